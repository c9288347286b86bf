package catalog

// AssetKind selects the upload path for an asset slot.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetFile  AssetKind = "file" // pdf/doc/docx
)

// AssetSlot is a named document field whose value is a URL to binary
// content in the object store.
type AssetSlot struct {
	Field  string    // field name on the document, e.g. "packImage"
	Folder string    // object-store folder, e.g. "brands"
	Kind   AssetKind
}

// RefField declares a reference to another collection. References are
// validated for identifier syntax at write time; existence is not
// enforced with a foreign key.
type RefField struct {
	Field      string // field name, e.g. "generic"
	Label      string // client-facing name for error messages, e.g. "Generic"
	Collection string // referenced collection
	Many       bool   // field holds a list of IDs
	Required   bool   // must be present on create
}

// SingletonPolicy controls creation when a document already exists.
// The two singleton entities deliberately diverge: About rejects,
// Hero upserts. Kept as explicit per-entity policy.
type SingletonPolicy int

const (
	SingletonNone SingletonPolicy = iota
	RejectIfExists
	UpsertIfExists
)

// Schema is the declarative descriptor one entity type is built from.
// The lifecycle service and the HTTP handler are generic; everything
// entity-specific lives here.
type Schema struct {
	Name       string // "Brand"
	Collection string // "brands"
	APIPath    string // router group path, "brand"

	RequiredFields []string
	OptionalFields []string // accepted scalar fields beyond the required set
	ListFields     []string // form fields decoded as string lists (JSON array or comma-split)

	AssetSlots []AssetSlot
	RefFields  []RefField

	Singleton    SingletonPolicy
	PopulateRefs bool

	// DiscriminatorField enables GET /category/:category filtering.
	DiscriminatorField string

	// ReadOneRequiresAuth marks GET /:id as authenticated (no role
	// check). Only doctorAdvice uses it.
	ReadOneRequiresAuth bool

	// HasOptions enables GET /options (id + display name projection).
	HasOptions bool

	// LimitedDefault caps GET /getLimited; 0 disables the route.
	LimitedDefault int
}

// DisplayField is the field used for options projections and search:
// "name" when declared, otherwise "title".
func (s Schema) DisplayField() string {
	for _, f := range append(append([]string{}, s.RequiredFields...), s.OptionalFields...) {
		if f == "name" {
			return "name"
		}
	}
	return "title"
}

// allowedFields is the whitelist of writable document fields.
// Envelope fields (id, createdBy, timestamps) are never writable.
func (s Schema) allowedFields() map[string]bool {
	allowed := make(map[string]bool)
	for _, f := range s.RequiredFields {
		allowed[f] = true
	}
	for _, f := range s.OptionalFields {
		allowed[f] = true
	}
	for _, f := range s.ListFields {
		allowed[f] = true
	}
	for _, r := range s.RefFields {
		allowed[r.Field] = true
	}
	return allowed
}

func (s Schema) assetSlot(field string) (AssetSlot, bool) {
	for _, slot := range s.AssetSlots {
		if slot.Field == field {
			return slot, true
		}
	}
	return AssetSlot{}, false
}
