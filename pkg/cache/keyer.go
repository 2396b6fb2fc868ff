package cache

// Keyer builds cache keys for each kind of pipeline result.
type Keyer interface {
	// NetlistKey identifies the netlist a source produced for a request.
	NetlistKey(source, request string) string
	// TextKey identifies generated prose or code ("explanation", "firmware")
	// for a netlist and request.
	TextKey(kind, netlistHash, request string) string
	// ArtifactKey identifies a rendered image of a netlist.
	ArtifactKey(netlistHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render settings that change an image's bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	UnitScale float64 `json:"unit_scale"`
}

// DefaultKeyer hashes key parts with SHA-256 under a per-kind prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) NetlistKey(source, request string) string {
	return hashKey("netlist", source, request)
}

func (DefaultKeyer) TextKey(kind, netlistHash, request string) string {
	return hashKey("text:"+kind, netlistHash, request)
}

func (DefaultKeyer) ArtifactKey(netlistHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", netlistHash, opts)
}

var _ Keyer = DefaultKeyer{}
