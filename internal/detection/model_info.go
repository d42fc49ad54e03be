package detection

// Detector model constants stamped into the processing block.
const (
	DefaultModelName    = "multi-detector-v3"
	DefaultModelVersion = "3.2.1"

	// ConfidenceThreshold is the minimum confidence the detector reports.
	ConfidenceThreshold = 0.65
)

// Per-category models listed in models_used.
const (
	BaseModel     = "base-detector-v3"
	WildlifeModel = "wildlife-classifier-v2"
	PersonModel   = "person-detector-v2"
	VehicleModel  = "vehicle-detector-v1"
)

// modelsUsed lists the base model plus one model per category present.
func modelsUsed(s *Summary) []string {
	models := []string{BaseModel}
	if s.ContainsWildlife {
		models = append(models, WildlifeModel)
	}
	if s.ContainsPeople {
		models = append(models, PersonModel)
	}
	if s.ContainsVehicles {
		models = append(models, VehicleModel)
	}
	return models
}
