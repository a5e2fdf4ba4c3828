package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/lyriceval/internal/meteor"
	"github.com/lehigh-university-libraries/lyriceval/internal/models"
	"github.com/lehigh-university-libraries/lyriceval/internal/rhyme"
)

// HandleRhyme compares two schemes, labelling stanza text first when lines
// are posted instead of schemes.
func (h *Handler) HandleRhyme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.RhymeRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	var ref, hyp rhyme.Scheme
	var err error
	switch {
	case req.ReferenceScheme != "" || req.HypothesisScheme != "":
		if ref, err = rhyme.ParseScheme(req.ReferenceScheme); err != nil {
			h.writeError(w, "Invalid reference scheme: "+err.Error(), http.StatusBadRequest)
			return
		}
		if hyp, err = rhyme.ParseScheme(req.HypothesisScheme); err != nil {
			h.writeError(w, "Invalid hypothesis scheme: "+err.Error(), http.StatusBadRequest)
			return
		}
	case len(req.Reference) > 0:
		if len(req.Reference) != len(req.Hypothesis) {
			h.writeError(w, "Reference and hypothesis must have the same number of lines", http.StatusUnprocessableEntity)
			return
		}
		if ref, err = h.evaluator.StanzaScheme(r.Context(), req.Reference, rhyme.Source); err != nil {
			h.writeError(w, "Failed to label reference: "+err.Error(), statusFor(err))
			return
		}
		if hyp, err = h.evaluator.StanzaScheme(r.Context(), req.Hypothesis, rhyme.Target); err != nil {
			h.writeError(w, "Failed to label hypothesis: "+err.Error(), statusFor(err))
			return
		}
	default:
		h.writeError(w, "Either schemes or stanza lines are required", http.StatusBadRequest)
		return
	}

	tier, err := rhyme.Compare(ref, hyp)
	if err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	h.writeJSON(w, models.RhymeResponse{
		ReferenceScheme:  ref.String(),
		HypothesisScheme: hyp.String(),
		Tier:             tier.String(),
		Weight:           tier.Weight(),
		RhymePresent:     ref.HasRepeat(),
	})
}

// HandleMeteor scores one lemma sequence pair with an optional inline
// synonym table.
func (h *Handler) HandleMeteor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.MeteorRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	params := meteor.DefaultParams()
	if req.Params != nil {
		params = *req.Params
	}
	if err := params.Validate(); err != nil {
		h.writeError(w, "Invalid params: "+err.Error(), http.StatusBadRequest)
		return
	}

	var syn meteor.SynonymFunc
	if len(req.Synonyms) > 0 {
		syn = meteor.StaticSynonyms(req.Synonyms)
	}

	h.writeJSON(w, meteor.Score(req.Reference, req.Hypothesis, syn, params))
}
