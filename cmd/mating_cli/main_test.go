package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"genefy/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunPrintsPairingResult(t *testing.T) {
	dir := t.TempDir()
	female := writeFile(t, dir, "female.json", `{"id":"cow-1","breed":"HO","values":{"net_merit":-29,"tpi":"1,743","gINB":4}}`)
	sire := writeFile(t, dir, "sire.json", `{"id":"bull-1","values":{"NM$":120,"TPI":1900,"GFI":6,"beta_casein":"A2A2"}}`)
	priorities := writeFile(t, dir, "p.json", `{"categories":{"economic":1}}`)

	var out bytes.Buffer
	if err := run(&out, zap.NewNop(), "", female, sire, priorities); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result domain.PairingResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if nm, ok := result.PPPV.Get("net_merit"); !ok || nm.PPPV != 45.5 {
		t.Fatalf("expected net_merit 45.5, got %+v", nm)
	}
	if tpi, ok := result.PPPV.Get("tpi"); !ok || tpi.PPPV != 1821.5 {
		t.Fatalf("expected tpi 1821.5, got %+v", tpi)
	}
	// 0.25*4 + 0.5*6
	if result.Inbreeding.ExpectedInbreeding != 4 || result.Inbreeding.Method != domain.InbreedingMethodGenomic {
		t.Fatalf("unexpected inbreeding %+v", result.Inbreeding)
	}
}

func TestRunMissingFile(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, zap.NewNop(), "", "nope.json", "nope.json", ""); err == nil {
		t.Fatalf("expected error for missing files")
	}
}
