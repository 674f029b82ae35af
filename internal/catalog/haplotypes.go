package catalog

import (
	"sort"
	"strings"
)

// HaplotypeCatalog mapea raza -> haplotipos letales aplicables, en orden de escaneo.
type HaplotypeCatalog struct {
	byBreed      map[string][]string
	aliases      map[string]string
	defaultBreed string
	known        map[string]struct{}
}

// NewHaplotypeCatalog construye el catálogo. Sin razas devuelve ErrEmptyCatalog.
func NewHaplotypeCatalog(byBreed map[string][]string, aliases map[string]string, defaultBreed string) (*HaplotypeCatalog, error) {
	if len(byBreed) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &HaplotypeCatalog{
		byBreed:      make(map[string][]string, len(byBreed)),
		aliases:      make(map[string]string, len(aliases)),
		defaultBreed: strings.ToUpper(strings.TrimSpace(defaultBreed)),
		known:        make(map[string]struct{}),
	}
	for breed, haps := range byBreed {
		code := strings.ToUpper(strings.TrimSpace(breed))
		keys := make([]string, 0, len(haps))
		for _, h := range haps {
			k := strings.ToLower(strings.TrimSpace(h))
			keys = append(keys, k)
			c.known[k] = struct{}{}
		}
		c.byBreed[code] = keys
	}
	for name, code := range aliases {
		c.aliases[strings.ToUpper(strings.TrimSpace(name))] = strings.ToUpper(strings.TrimSpace(code))
	}
	return c, nil
}

// BreedCode normaliza "Holstein"/"ho" a "HO". Una raza vacía no tiene código.
func (c *HaplotypeCatalog) BreedCode(raw string) string {
	b := strings.ToUpper(strings.TrimSpace(raw))
	if code, ok := c.aliases[b]; ok {
		return code
	}
	return b
}

// Applicable devuelve los haplotipos de la raza. Raza desconocida = lista vacía.
func (c *HaplotypeCatalog) Applicable(breed string) []string {
	haps := c.byBreed[c.BreedCode(breed)]
	return append(make([]string, 0, len(haps)), haps...)
}

// ForPairing decide qué razas y haplotipos escanear para un par hembra x toro.
// Raza de la hembra, si no la del toro, si no la raza por defecto; razas distintas = unión.
func (c *HaplotypeCatalog) ForPairing(femaleBreed, sireBreed string) (breeds []string, haplotypes []string) {
	f, s := c.BreedCode(femaleBreed), c.BreedCode(sireBreed)
	switch {
	case f == "" && s == "":
		breeds = []string{c.defaultBreed}
	case f == "" || f == s:
		breeds = []string{s}
	case s == "":
		breeds = []string{f}
	default:
		breeds = []string{f, s}
	}

	haplotypes = make([]string, 0)
	seen := make(map[string]struct{})
	for _, b := range breeds {
		for _, h := range c.byBreed[b] {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			haplotypes = append(haplotypes, h)
		}
	}
	return breeds, haplotypes
}

// IsHaplotype indica si la clave es un marcador conocido de alguna raza.
func (c *HaplotypeCatalog) IsHaplotype(key string) bool {
	_, ok := c.known[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// Breeds lista los códigos de raza ordenados.
func (c *HaplotypeCatalog) Breeds() []string {
	out := make([]string, 0, len(c.byBreed))
	for b := range c.byBreed {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
