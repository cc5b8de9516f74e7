package studio

import (
	"github.com/lehigh-university-libraries/stylist/internal/models"
)

// Present maps a snapshot to the view drawn by the client. It has no side
// effects; examples are passed through for the prompt collector.
func Present(snap Snapshot, examples []string) models.View {
	hasImage := snap.Image != nil && !snap.Image.Empty()
	hasPrompt := snap.Prompt != ""

	view := models.View{
		SessionID: snap.ID,
		State:     snap.State.Name(),
		Prompt:    snap.Prompt,
		Examples:  examples,
		UpdatedAt: snap.UpdatedAt,
	}

	if hasImage {
		view.Upload.PreviewURI = snap.Image.DataURI()
	} else {
		view.Upload.Placeholder = true
	}

	loading := false
	switch st := snap.State.(type) {
	case Loading:
		loading = true
		view.Output.Loading = true
		view.Refresh = true
	case Succeeded:
		view.Output.ResultURI = st.Result.DataURI()
		view.Controls.PromoteEnabled = true
	case Failed:
		view.Error = st.Message
		view.Output.Placeholder = true
	default:
		view.Output.Placeholder = true
	}

	view.Controls.PromptEnabled = hasImage && !loading
	view.Controls.ExamplesEnabled = hasImage && !loading
	view.Controls.GenerateEnabled = hasImage && hasPrompt && !loading

	return view
}
