package catalog

import "genefy/internal/domain"

func ref(lo, hi float64) (*float64, *float64) {
	return &lo, &hi
}

func trait(key, category, label string, lowerIsBetter bool, lo, hi *float64, aliases ...string) TraitDefinition {
	return TraitDefinition{
		Key:           key,
		Category:      category,
		Label:         label,
		LowerIsBetter: lowerIsBetter,
		RefMin:        lo,
		RefMax:        hi,
		Aliases:       aliases,
	}
}

func genotype(key, label string, aliases ...string) TraitDefinition {
	return TraitDefinition{Key: key, Category: domain.TraitCategoryGenotype, Label: label, Categorical: true, Aliases: aliases}
}

// Default devuelve el catálogo Holstein/Jersey/Ayrshire/Brown Swiss incorporado.
// Escalas de referencia: rangos típicos de evaluaciones genómicas EUA 2024.
func Default() *Catalog {
	const (
		eco  = domain.TraitCategoryEconomic
		prod = domain.TraitCategoryProduction
		hlth = domain.TraitCategoryHealth
		fert = domain.TraitCategoryFertility
		typ  = domain.TraitCategoryType
		eff  = domain.TraitCategoryEfficiency
		sus  = domain.TraitCategorySustainability
		calv = domain.TraitCategoryCalving
		lng  = domain.TraitCategoryLongevity
	)
	none := func() (*float64, *float64) { return nil, nil }

	traits := make([]TraitDefinition, 0, 64)
	add := func(key, category, label string, lowerIsBetter bool, r func() (*float64, *float64), aliases ...string) {
		lo, hi := r()
		traits = append(traits, trait(key, category, label, lowerIsBetter, lo, hi, aliases...))
	}
	rng := func(l, h float64) func() (*float64, *float64) {
		return func() (*float64, *float64) { return ref(l, h) }
	}

	// Económicos
	add("net_merit", eco, "Net Merit $", false, rng(-500, 1500), "nm$", "nm", "net merit")
	add("tpi", eco, "TPI", false, rng(1800, 3500), "gtpi")
	add("cheese_merit", eco, "Cheese Merit $", false, rng(-500, 1500), "cm$", "cheese merit")
	add("fluid_merit", eco, "Fluid Merit $", false, rng(-500, 1300), "fm$", "fluid merit")
	add("grazing_merit", eco, "Grazing Merit $", false, rng(-500, 1200), "gm$", "grazing merit")
	add("jpi", eco, "JPI", false, none)
	add("eco_dollars", eco, "Eco$", false, rng(0, 400), "eco$")

	// Producción
	add("milk", prod, "Leite (lbs)", false, rng(-1000, 2000))
	add("fat", prod, "Gordura (lbs)", false, rng(-30, 150))
	add("protein", prod, "Proteína (lbs)", false, rng(-30, 80))
	add("fat_percent", prod, "Gordura %", false, rng(-0.3, 0.3), "fat%", "fat pct")
	add("protein_percent", prod, "Proteína %", false, rng(-0.16, 0.16), "protein%", "protein pct")

	// Salud
	add("scs", hlth, "Células Somáticas", true, rng(2.5, 3.5), "somatic cell score")
	add("health_index", hlth, "Índice de Saúde", false, rng(90, 115))
	add("mastitis", hlth, "Mastite", true, rng(90, 110))
	add("metritis", hlth, "Metrite", true, rng(94, 106))
	add("retained_placenta", hlth, "Retenção de Placenta", true, none)
	add("displaced_abomasum", hlth, "Deslocamento de Abomaso", true, none)
	add("ketosis", hlth, "Cetose", true, none)
	add("milk_fever", hlth, "Febre do Leite", true, none)

	// Fertilidad
	add("dpr", fert, "DPR", false, rng(-4, 5), "daughter pregnancy rate")
	add("hcr", fert, "HCR", false, rng(-5, 6), "heifer conception rate", "heifer_conception_rate")
	add("ccr", fert, "CCR", false, rng(-5, 6), "cow conception rate", "cow_conception_rate")
	add("fertility_index", fert, "Índice de Fertilidade", false, rng(-2, 4), "fi", "fertility index")
	add("early_first_calving", fert, "Primeiro Parto Precoce", false, none, "efc")

	// Tipo
	add("ptat", typ, "PTAT", false, rng(-2.5, 3.5), "pta type")
	add("udc", typ, "Composto de Úbere", false, rng(-2, 3), "udder composite")
	add("flc", typ, "Composto de Pernas e Pés", false, rng(-2, 2.5), "feet and legs composite")
	add("bwc", typ, "Composto Corporal", false, rng(-3, 3), "body weight composite")
	add("bde", typ, "Profundidade Corporal", false, none)
	add("dfm", typ, "Forma Leiteira", false, none)
	add("sta", typ, "Estatura", false, none)
	add("str", typ, "Força", false, none)

	// Eficiencia
	add("feed_efficiency", eff, "Eficiência Alimentar", false, rng(85, 115), "fe", "feed efficiency")
	add("feed_saved", eff, "Feed Saved", false, rng(-60, 260), "fsav")
	add("rfi", eff, "Consumo Alimentar Residual", true, rng(-150, 150), "residual feed intake")
	add("milking_speed", eff, "Velocidade de Ordenha", false, none)
	add("ecofeed_life", eff, "EcoFeed Vida", false, none)
	add("ecofeed_heifer", eff, "EcoFeed Novilha", false, none)
	add("ecofeed_cow", eff, "EcoFeed Vaca", false, none)

	// Sustentabilidad
	add("vei", sus, "VEI", false, none)
	add("vea", sus, "VEA", false, none)
	add("eco2feed", sus, "Eco2Feed", false, none)
	add("bt", sus, "BT", false, none)

	// Parto
	add("sire_calving_ease", calv, "Facilidade de Parto (touro)", true, rng(1, 4), "sce")
	add("daughter_calving_ease", calv, "Facilidade de Parto (filhas)", true, rng(1, 4), "dce")
	add("sire_stillbirth", calv, "Natimortos (touro)", true, rng(3, 11), "ssb")
	add("daughter_stillbirth", calv, "Natimortos (filhas)", true, rng(3, 9), "dsb")
	add("gestation_length", calv, "Duração da Gestação", true, rng(-6, 4), "gl")

	// Longevidad
	add("productive_life", lng, "Vida Produtiva", false, rng(-3, 8), "pl", "productive life")
	add("cow_livability", lng, "Sobrevivência de Vacas", false, rng(-3, 7), "liv", "livability")
	add("heifer_livability", lng, "Sobrevivência de Novilhas", false, rng(-2, 4), "hliv")

	// Genotipos
	traits = append(traits,
		genotype("beta_casein", "Beta-Caseína", "beta casein", "betacasein"),
		genotype("kappa_casein", "Kappa-Caseína", "kappa casein", "kappacasein"),
	)

	return &Catalog{
		Version:      "builtin-2024.1",
		DefaultBreed: "HO",
		Traits:       traits,
		Haplotypes: map[string][]string{
			"HO": {"hh1", "hh2", "hh3", "hh4", "hh5", "hh6"},
			"JE": {"jh1", "jh2"},
			"AY": {"ah1", "ah2"},
			"BS": {"bh1", "bh2"},
		},
		BreedAliases: map[string]string{
			"HOLSTEIN":    "HO",
			"HOLANDES":    "HO",
			"HOLANDÊS":    "HO",
			"JERSEY":      "JE",
			"AYRSHIRE":    "AY",
			"BROWN SWISS": "BS",
			"PARDO SUIÇO": "BS",
		},
		Inbreeding: InbreedingConfig{
			FemaleWeight:    0.25,
			SireWeight:      0.5,
			Offset:          0,
			DefaultExpected: 6.25,
			ModeradoFrom:    3,
			AltoFrom:        6,
			CriticoFrom:     10,
		},
		Scoring: ScoringConfig{
			NeutralBase: 50,
			Grades: []GradeBand{
				{Letter: "A+", Min: 90, Max: 100},
				{Letter: "A", Min: 80, Max: 90},
				{Letter: "B+", Min: 70, Max: 80},
				{Letter: "B", Min: 60, Max: 70},
				{Letter: "C", Min: 50, Max: 60},
				{Letter: "D", Min: 35, Max: 50},
				{Letter: "F", Min: 0, Max: 35},
			},
			GenotypeBonuses: []GenotypeBonus{
				{Trait: "beta_casein", Value: "A2A2", Points: 5},
				{Trait: "beta_casein", Value: "A1A2", Points: 2},
				{Trait: "kappa_casein", Value: "BB", Points: 3},
				{Trait: "kappa_casein", Value: "AB", Points: 1},
			},
			GenotypeCap: 8,
			Complementarity: ComplementarityConfig{
				Traits:      []string{"milk", "productive_life", "fertility_index", "health_index"},
				WeakBelow:   0.4,
				StrongAbove: 0.6,
				Points:      2,
				Cap:         6,
			},
			Sustainability: SustainabilityConfig{
				Rules: []SustainabilityRule{
					{Trait: "feed_efficiency", Threshold: 105, Points: 3},
					{Trait: "rfi", Threshold: -100, Below: true, Points: 3},
					{Trait: "eco_dollars", Threshold: 200, Points: 2},
				},
				Cap: 8,
			},
			HaplotypeFreeBonus:        5,
			InbreedingPenaltyPerPoint: 5,
			LethalHaplotypePenalty:    50,
		},
		Status: defaultStatus(),
	}
}

func defaultStatus() StatusConfig {
	return StatusConfig{
		HighlyRecommendedScore:   75,
		RecommendedScore:         60,
		AcceptableScore:          50,
		RecommendedMaxInbreeding: 6,
		AcceptableMaxInbreeding:  8,
	}
}
