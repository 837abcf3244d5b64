package types

// BuildProfile is a reusable set of builder settings, loaded from a JSON
// file via `cadlock build --profile`.
type BuildProfile struct {
	Name        string   `json:"name"`
	Suffix      string   `json:"suffix"`       // non mandatory, defaults to _protected
	OutputDir   string   `json:"output_dir"`   // non mandatory, defaults to the drawing's directory
	StubPath    string   `json:"stub_path"`    // non mandatory, defaults to the running executable
	MaxLaunches int      `json:"max_launches"` // 0 means unlimited
	Flags       []string `json:"flags"`        // non mandatory: meltdown, countdown, self-destruct
}
