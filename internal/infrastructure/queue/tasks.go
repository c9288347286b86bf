package queue

// Task types.
const (
	TypeAssetDelete = "asset:delete"
	TypeOrphanSweep = "asset:sweep_orphans"
)

// Queue names.
const (
	QueueAssets = "assets"
)

// AssetDeletePayload retries one object delete that failed inline
// during an entity update or delete.
type AssetDeletePayload struct {
	URL string `json:"url"`
}

// OrphanSweepPayload bounds one sweep run.
type OrphanSweepPayload struct {
	Limit int `json:"limit"`
}
