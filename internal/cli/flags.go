package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile     string
	Novel       string
	SourceDir   string
	OutputDir   string
	ProgressDir string
	GlossaryDir string
	PromptDir   string
	ArchiveDB   string

	// Chapter selection
	Chapter   int
	RangeSpec string
	Start     int
	Count     int

	// Execution
	Parallel bool
	Workers  int
	Force    bool
	Reset    bool
	Stats    bool

	// Provider flags
	Provider string
	Model    string
	BaseURL  string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		SourceDir:   "source",
		OutputDir:   "output",
		ProgressDir: "progress",
		GlossaryDir: "glossary",
		Workers:     3,
		Provider:    "openai",
		Model:       "gemini-2.5-pro-exp-n",
	}
}
