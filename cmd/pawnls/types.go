package main

// CLIResult is the top-level JSON envelope for every query command,
// mirroring the teacher's single-envelope convention.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLILocation is a JSON-friendly byte-offset span within a file.
type CLILocation struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// CLIResolution is ResolveNameAt's JSON-friendly result.
type CLIResolution struct {
	Kind     string `json:"kind"`
	FuncName string `json:"function,omitempty"`
	File     string `json:"file,omitempty"`
}

// CLIDef is DefAt's JSON-friendly result.
type CLIDef struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Location CLILocation `json:"location"`
}
