package vehicle

// BusinessType selects which scan modes are offered and which prompt
// variant the relay uses. VN = new vehicles, VO = used vehicles.
type BusinessType string

const (
	BusinessNew  BusinessType = "VN"
	BusinessUsed BusinessType = "VO"
)

func (b BusinessType) Valid() bool {
	return b == BusinessNew || b == BusinessUsed
}

// ScanMode is the tagged variant behind the wire-level mode strings.
// Adding a mode means adding a constant and a prompt table entry, not a
// new conditional branch.
type ScanMode int

const (
	ModeVIN ScanMode = iota
	ModeRegistrationDocument
)

// Wire values the mobile client sends.
const (
	modeWireVIN      = "vin"
	modeWireRegisDoc = "carte_grise"
)

func (m ScanMode) String() string {
	if m == ModeRegistrationDocument {
		return modeWireRegisDoc
	}
	return modeWireVIN
}

// ParseScanMode maps a wire mode string to its variant. Unknown values
// fall back to VIN mode.
func ParseScanMode(s string) ScanMode {
	if s == modeWireRegisDoc {
		return ModeRegistrationDocument
	}
	return ModeVIN
}

// ScanRequest is the relay request body. Ephemeral, never persisted.
type ScanRequest struct {
	Image        string `json:"image"`
	Mode         string `json:"mode"`
	BusinessType string `json:"businessType"`
	MimeType     string `json:"mimeType"`
}

// RecognitionResult mirrors the model's constrained output schema. The
// schema declares vin required, but the producing model may still omit
// it; callers treat a missing vin as a soft failure, not a protocol
// error. A non-empty Error is the relay's soft-failure channel.
type RecognitionResult struct {
	VIN   string `json:"vin,omitempty"`
	Plate string `json:"plate,omitempty"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Year  string `json:"year,omitempty"`
	Error string `json:"error,omitempty"`
}

// Draft is the editable, pre-save stage of a record. Every field stays
// hand-editable so the user can correct model mistakes before saving.
type Draft struct {
	VIN   string `json:"vin"`
	Plate string `json:"plate"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  string `json:"year"`
}

// Record is a persisted inventory entry. A draft is promoted to a
// Record only when both VIN and Location are non-empty.
type Record struct {
	ID        string `json:"id"`
	VIN       string `json:"vin"`
	Plate     string `json:"plate,omitempty"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Year      string `json:"year"`
	Location  string `json:"location"`
	FullDate  string `json:"fullDate"`
	Timestamp string `json:"timestamp"`
	Remarks   string `json:"remarks,omitempty"`
}

// Settings is the process-wide application configuration the user can
// edit. AllowedLocations enumerates the zones a record may be tagged
// with and must never be empty. StrictLocationMode is carried for
// persistence round-trip fidelity; nothing reads it yet.
type Settings struct {
	CompanyName        string       `json:"companyName"`
	AllowedLocations   []string     `json:"allowedLocations"`
	StrictLocationMode bool         `json:"strictLocationMode"`
	BusinessType       BusinessType `json:"businessType"`
}

// HasLocation reports whether loc is one of the configured zones.
func (s Settings) HasLocation(loc string) bool {
	for _, l := range s.AllowedLocations {
		if l == loc {
			return true
		}
	}
	return false
}
