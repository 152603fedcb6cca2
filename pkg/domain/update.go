package domain

// PresentationUpdate is one display change pushed to a forest occurrence.
// It is a complete snapshot, not a delta: hosts apply every field.
type PresentationUpdate struct {
	// Icon is the status glyph to display.
	Icon string `json:"icon"`

	// Running reports whether the command currently has an in-flight run.
	Running bool `json:"running"`

	// Tooltip is the hover/detail text for the occurrence.
	Tooltip string `json:"tooltip"`

	// OutputPath points at the captured run output, when available.
	OutputPath string `json:"output_path,omitempty"`
}

// RunningUpdate builds the update shown while a run is in flight, including
// the provenance summary and formatted chain.
func RunningUpdate(src TriggerSource) PresentationUpdate {
	return PresentationUpdate{
		Icon:    StatusRunning.Icon(),
		Running: true,
		Tooltip: "Running — " + src.Summary() + "\n" + src.FormatChain("", 80),
	}
}

// ResultUpdate builds the update shown once a run has completed.
func ResultUpdate(res RunResult) PresentationUpdate {
	return PresentationUpdate{
		Icon:       res.Status.Icon(),
		Running:    false,
		Tooltip:    res.Tooltip(),
		OutputPath: res.OutputPath,
	}
}
