package suite

// Suite is a parsed expectation file.
type Suite struct {
	Name string
	// Source is the suite file location.
	Source string
	// Contract is the contract location, resolved against the suite file
	// directory when relative.
	Contract string

	Integrity  bool
	Structure  bool
	Paths      []PathSpec
	Ordering   []OrderingSpec
	Operations []OperationSpec
	Schemas    []SchemaSpec
	Parity     []ParitySpec
}

type suiteFile struct {
	Name       string          `yaml:"name"`
	Contract   string          `yaml:"contract"`
	Integrity  bool            `yaml:"integrity"`
	Structure  bool            `yaml:"structure"`
	Paths      []PathSpec      `yaml:"paths"`
	Ordering   []OrderingSpec  `yaml:"ordering"`
	Operations []OperationSpec `yaml:"operations"`
	Schemas    []SchemaSpec    `yaml:"schemas"`
	Parity     []ParitySpec    `yaml:"parity"`
}

// PathSpec mirrors contract.PathExpectation.
type PathSpec struct {
	Path          string   `yaml:"path"`
	Absent        bool     `yaml:"absent"`
	Methods       []string `yaml:"methods"`
	AbsentMethods []string `yaml:"absentMethods"`
	Parameters    []string `yaml:"parameters"`
}

// OrderingSpec mirrors contract.OrderingExpectation.
type OrderingSpec struct {
	Path   string   `yaml:"path"`
	Prefix string   `yaml:"prefix"`
	After  []string `yaml:"after"`
}

// OperationSpec mirrors contract.OperationExpectation.
type OperationSpec struct {
	Path               string         `yaml:"path"`
	Method             string         `yaml:"method"`
	Absent             bool           `yaml:"absent"`
	OperationID        string         `yaml:"operationId"`
	Summary            string         `yaml:"summary"`
	Tags               []string       `yaml:"tags"`
	PermissionsContain []string       `yaml:"permissionsContain"`
	Parameters         []string       `yaml:"parameters"`
	Request            *RequestSpec   `yaml:"request"`
	Responses          []ResponseSpec `yaml:"responses"`
}

type RequestSpec struct {
	Absent    bool   `yaml:"absent"`
	Required  *bool  `yaml:"required"`
	MediaType string `yaml:"mediaType"`
	SchemaRef string `yaml:"schemaRef"`
}

type ResponseSpec struct {
	Status              string `yaml:"status"`
	Description         string `yaml:"description"`
	DescriptionContains string `yaml:"descriptionContains"`
	MediaType           string `yaml:"mediaType"`
	SchemaRef           string `yaml:"schemaRef"`
	NoContent           bool   `yaml:"noContent"`
}

// LocatorSpec selects a schema by component name, or by operation with an
// optional response status (request body when empty).
type LocatorSpec struct {
	Component string `yaml:"component"`
	Path      string `yaml:"path"`
	Method    string `yaml:"method"`
	Status    string `yaml:"status"`
	MediaType string `yaml:"mediaType"`
}

// SchemaSpec mirrors contract.SchemaExpectation.
type SchemaSpec struct {
	LocatorSpec `yaml:",inline"`
	Type        string         `yaml:"type"`
	Required    []string       `yaml:"required"`
	Properties  []PropertySpec `yaml:"properties"`
	Present     []string       `yaml:"present"`
	Absent      []string       `yaml:"absent"`
}

type PropertySpec struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Format string   `yaml:"format"`
	Enum   []string `yaml:"enum"`
	Ref    string   `yaml:"ref"`
}

// ParitySpec mirrors contract.SchemaParity.
type ParitySpec struct {
	Left   LocatorSpec `yaml:"left"`
	Right  LocatorSpec `yaml:"right"`
	Ignore []string    `yaml:"ignore"`
}
