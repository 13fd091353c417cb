package geo

// Region is a curated French terrain area with a known elevation
// range, used as a preset for generation requests.
type Region struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Bounds            BBox     `json:"bounds"`
	DefaultResolution int      `json:"default_resolution"`
	ElevationRange    [2]int   `json:"elevation_range"`
	DataSources       []string `json:"data_sources"`
	Description       string   `json:"description"`
}

// FranceRegions covers the major French geographic features. Order is
// the presentation order of the catalog.
var FranceRegions = []Region{
	{
		ID:                "mont-blanc",
		Name:              "Mont Blanc",
		Bounds:            BBox{LatMin: 45.78, LatMax: 45.90, LonMin: 6.80, LonMax: 6.95},
		DefaultResolution: 256,
		ElevationRange:    [2]int{1200, 4808},
		DataSources:       []string{"srtm"},
		Description:       "Le plus haut sommet des Alpes et d'Europe occidentale",
	},
	{
		ID:                "chamonix",
		Name:              "Vallée de Chamonix",
		Bounds:            BBox{LatMin: 45.88, LatMax: 46.02, LonMin: 6.82, LonMax: 7.02},
		DefaultResolution: 256,
		ElevationRange:    [2]int{1035, 3842},
		DataSources:       []string{"srtm"},
		Description:       "Célèbre vallée alpine au pied du Mont Blanc",
	},
	{
		ID:                "massif-central",
		Name:              "Puy de Dôme",
		Bounds:            BBox{LatMin: 45.70, LatMax: 45.82, LonMin: 2.90, LonMax: 3.05},
		DefaultResolution: 256,
		ElevationRange:    [2]int{800, 1465},
		DataSources:       []string{"srtm"},
		Description:       "Chaîne des Puys, volcans endormis du Massif Central",
	},
	{
		ID:                "pyrenees",
		Name:              "Pic du Midi",
		Bounds:            BBox{LatMin: 42.88, LatMax: 43.02, LonMin: -0.20, LonMax: 0.05},
		DefaultResolution: 256,
		ElevationRange:    [2]int{500, 2872},
		DataSources:       []string{"srtm"},
		Description:       "Région du Pic du Midi de Bigorre dans les Pyrénées",
	},
	{
		ID:                "provence",
		Name:              "Sainte-Victoire",
		Bounds:            BBox{LatMin: 43.48, LatMax: 43.58, LonMin: 5.52, LonMax: 5.72},
		DefaultResolution: 256,
		ElevationRange:    [2]int{200, 1011},
		DataSources:       []string{"srtm"},
		Description:       "Montagne emblématique peinte par Cézanne",
	},
	{
		ID:                "ventoux",
		Name:              "Mont Ventoux",
		Bounds:            BBox{LatMin: 44.10, LatMax: 44.22, LonMin: 5.20, LonMax: 5.35},
		DefaultResolution: 256,
		ElevationRange:    [2]int{400, 1909},
		DataSources:       []string{"srtm"},
		Description:       "Le Géant de Provence, célèbre étape du Tour de France",
	},
	{
		ID:                "corsica",
		Name:              "Monte Cinto (Corse)",
		Bounds:            BBox{LatMin: 42.30, LatMax: 42.42, LonMin: 8.90, LonMax: 9.05},
		DefaultResolution: 256,
		ElevationRange:    [2]int{500, 2706},
		DataSources:       []string{"srtm"},
		Description:       "Point culminant de la Corse",
	},
	{
		ID:                "brittany-coast",
		Name:              "Côte de Granit Rose",
		Bounds:            BBox{LatMin: 48.78, LatMax: 48.88, LonMin: -3.55, LonMax: -3.38},
		DefaultResolution: 256,
		ElevationRange:    [2]int{0, 80},
		DataSources:       []string{"srtm"},
		Description:       "Côte spectaculaire aux rochers de granit rose",
	},
	{
		ID:                "vercors",
		Name:              "Massif du Vercors",
		Bounds:            BBox{LatMin: 44.95, LatMax: 45.12, LonMin: 5.40, LonMax: 5.60},
		DefaultResolution: 256,
		ElevationRange:    [2]int{200, 2341},
		DataSources:       []string{"srtm"},
		Description:       "Forteresse naturelle du plateau du Vercors",
	},
	{
		ID:                "gorges-verdon",
		Name:              "Gorges du Verdon",
		Bounds:            BBox{LatMin: 43.72, LatMax: 43.82, LonMin: 6.30, LonMax: 6.50},
		DefaultResolution: 256,
		ElevationRange:    [2]int{400, 1500},
		DataSources:       []string{"srtm"},
		Description:       "Le Grand Canyon de l'Europe",
	},
	{
		ID:                "dune-pilat",
		Name:              "Dune du Pilat",
		Bounds:            BBox{LatMin: 44.55, LatMax: 44.62, LonMin: -1.22, LonMax: -1.12},
		DefaultResolution: 256,
		ElevationRange:    [2]int{0, 110},
		DataSources:       []string{"srtm"},
		Description:       "Plus haute dune d'Europe sur la côte atlantique",
	},
	{
		ID:                "cirque-gavarnie",
		Name:              "Cirque de Gavarnie",
		Bounds:            BBox{LatMin: 42.68, LatMax: 42.78, LonMin: -0.05, LonMax: 0.08},
		DefaultResolution: 256,
		ElevationRange:    [2]int{1300, 3248},
		DataSources:       []string{"srtm"},
		Description:       "Amphithéâtre naturel classé UNESCO",
	},
}

// RegionByID looks up a region in the catalog.
func RegionByID(id string) (Region, bool) {
	for _, r := range FranceRegions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// RegionIDs returns the catalog ids in presentation order.
func RegionIDs() []string {
	ids := make([]string, len(FranceRegions))
	for i, r := range FranceRegions {
		ids[i] = r.ID
	}
	return ids
}
