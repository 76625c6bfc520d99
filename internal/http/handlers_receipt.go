package http

import (
	"net/http"

	"pocketbook/internal/core"
	"pocketbook/internal/receipt"
)

type receiptResponse struct {
	Recognized bool       `json:"recognized"`
	Draft      core.Draft `json:"draft"`
	Error      string     `json:"error,omitempty"`
}

// handleReceipt returns a pre-filled draft for the manual form. Recognition
// failures still answer 200 with a blank draft so the client can continue.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	data, declared, err := readUpload(w, r, "image")
	if err != nil {
		if isTooLarge(err) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "image too large").Write(w)
			return
		}
		BadRequestError(err.Error()).Write(w)
		return
	}
	if len(data) == 0 {
		BadRequestError(receipt.ErrEmptyImage.Error()).Write(w)
		return
	}

	analysis := s.capture.Analyze(r.Context(), receipt.Image{Data: data, MIMEType: receipt.DetectMIME(data, declared)})
	resp := receiptResponse{Recognized: analysis.Recognized, Draft: analysis.Draft}
	if analysis.Err != nil {
		resp.Error = analysis.Err.Error()
	}
	NewJSONResponse().Body(resp).Write(w)
}
