package catalog

// Registry declares every entity type the platform serves. Each entry
// is pure data; the lifecycle service and HTTP handler interpret it.
// Adding an entity type means adding a descriptor here and a route
// group in the router, nothing else.
func Registry() []Schema {
	return []Schema{
		{
			Name:           "About",
			Collection:     "abouts",
			APIPath:        "about",
			RequiredFields: []string{"title", "description"},
			AssetSlots:     []AssetSlot{{Field: "image", Folder: "about", Kind: AssetImage}},
			Singleton:      RejectIfExists,
		},
		{
			Name:           "Advertisement",
			Collection:     "advertisements",
			APIPath:        "advertisement",
			RequiredFields: []string{"title"},
			OptionalFields: []string{"link", "position"},
			AssetSlots:     []AssetSlot{{Field: "image", Folder: "advertisements", Kind: AssetImage}},
			LimitedDefault: 6,
		},
		{
			Name:           "Banner",
			Collection:     "banners",
			APIPath:        "banner",
			RequiredFields: []string{"title"},
			OptionalFields: []string{"link"},
			AssetSlots:     []AssetSlot{{Field: "image", Folder: "banners", Kind: AssetImage}},
		},
		{
			Name:           "Brand",
			Collection:     "brands",
			APIPath:        "brand",
			RequiredFields: []string{"name", "productType"},
			OptionalFields: []string{"strength", "packSize", "price", "description"},
			ListFields:     []string{"alternateBrands"},
			AssetSlots:     []AssetSlot{{Field: "packImage", Folder: "brands", Kind: AssetImage}},
			RefFields: []RefField{
				{Field: "generic", Label: "Generic", Collection: "generics", Required: true},
				{Field: "manufacturer", Label: "Manufacturer", Collection: "pharmaceuticals", Required: true},
			},
			PopulateRefs:   true,
			LimitedDefault: 10,
		},
		{
			Name:                "DoctorAdvice",
			Collection:          "doctor_advices",
			APIPath:             "doctorAdvice",
			RequiredFields:      []string{"title", "description"},
			OptionalFields:      []string{"doctorName", "specialty"},
			AssetSlots:          []AssetSlot{{Field: "image", Folder: "doctor-advices", Kind: AssetImage}},
			ReadOneRequiresAuth: true,
		},
		{
			Name:               "Generic",
			Collection:         "generics",
			APIPath:            "generic",
			RequiredFields:     []string{"name"},
			OptionalFields:     []string{"details", "indication", "sideEffects", "category"},
			DiscriminatorField: "category", // Allopathic / Herbal
			HasOptions:         true,
		},
		{
			Name:           "Hero",
			Collection:     "heroes",
			APIPath:        "hero",
			RequiredFields: []string{"title"},
			OptionalFields: []string{"subtitle"},
			AssetSlots:     []AssetSlot{{Field: "image", Folder: "hero", Kind: AssetImage}},
			Singleton:      UpsertIfExists,
		},
		{
			Name:           "Leader",
			Collection:     "leaders",
			APIPath:        "leader",
			RequiredFields: []string{"name", "designation"},
			OptionalFields: []string{"bio"},
			AssetSlots:     []AssetSlot{{Field: "image", Folder: "leaders", Kind: AssetImage}},
		},
		{
			Name:           "MedicalTest",
			Collection:     "medical_tests",
			APIPath:        "medicalTest",
			RequiredFields: []string{"name"},
			OptionalFields: []string{"description", "price"},
			AssetSlots:     []AssetSlot{{Field: "image", Folder: "medical-tests", Kind: AssetImage}},
			RefFields: []RefField{
				{Field: "trustedCenters", Label: "Trusted Center", Collection: "trusted_centers", Many: true},
			},
			PopulateRefs: true,
		},
		{
			Name:           "News",
			Collection:     "news",
			APIPath:        "news",
			RequiredFields: []string{"title", "description"},
			AssetSlots:     []AssetSlot{{Field: "image", Folder: "news", Kind: AssetImage}},
			LimitedDefault: 4,
		},
		{
			Name:           "Pharmaceutical",
			Collection:     "pharmaceuticals",
			APIPath:        "pharmaceutical",
			RequiredFields: []string{"name"},
			OptionalFields: []string{"address", "website", "established"},
			AssetSlots:     []AssetSlot{{Field: "logo", Folder: "pharmaceuticals", Kind: AssetImage}},
			HasOptions:     true,
		},
		{
			Name:           "TrustedCenter",
			Collection:     "trusted_centers",
			APIPath:        "trustedCenter",
			RequiredFields: []string{"name", "address"},
			OptionalFields: []string{"phone", "website"},
			AssetSlots:     []AssetSlot{{Field: "logo", Folder: "trusted-centers", Kind: AssetImage}},
			HasOptions:     true,
		},
	}
}
