package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/patrickprogramme/clipscribe/internal/subtitles"
	"github.com/patrickprogramme/clipscribe/pkg/captions"
	"github.com/patrickprogramme/clipscribe/pkg/chapters"
	"github.com/patrickprogramme/clipscribe/pkg/model"
)

// SegmentsRequest est le corps de POST /api/v1/segments.
type SegmentsRequest struct {
	TotalDuration *model.Seconds     `json:"total_duration" binding:"required"`
	Chapters      []model.RawChapter `json:"chapters"`
}

type SegmentsResponse struct {
	Segments []model.Segment `json:"segments"`
}

// CaptionsRequest est le corps de POST /api/v1/captions.
type CaptionsRequest struct {
	Text        string         `json:"text"`
	Start       *model.Seconds `json:"start" binding:"required"`
	End         *model.Seconds `json:"end" binding:"required"`
	WordsPerCue *int           `json:"words_per_cue"`
}

type CaptionsResponse struct {
	Cues []model.Cue `json:"cues"`
}

func (s *Server) health(c *gin.Context) {
	s.rh.Success(c, gin.H{"status": "ok"})
}

func (s *Server) segments(c *gin.Context) {
	var req SegmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.rh.BadRequest(c, "requête invalide : "+err.Error())
		return
	}
	segs, err := chapters.Segment(*req.TotalDuration, req.Chapters)
	if err != nil {
		s.rh.FromError(c, err)
		return
	}
	s.rh.Success(c, SegmentsResponse{Segments: segs})
}

func (s *Server) captions(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != string(model.FormatSRT) && format != string(model.FormatVTT) {
		s.rh.BadRequest(c, "format doit être json, srt ou vtt")
		return
	}

	var req CaptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.rh.BadRequest(c, "requête invalide : "+err.Error())
		return
	}
	wpc := s.wordsPerCue
	if req.WordsPerCue != nil {
		wpc = *req.WordsPerCue
	}

	cues, err := captions.Time(req.Text, *req.Start, *req.End, wpc)
	if err != nil {
		s.rh.FromError(c, err)
		return
	}

	switch format {
	case "json":
		s.rh.Success(c, CaptionsResponse{Cues: cues})
	default:
		f := model.Format(format)
		data, err := subtitles.EncodeBytes(f, cues)
		if err != nil {
			s.rh.FromError(c, err)
			return
		}
		c.Data(http.StatusOK, contentType(f), data)
	}
}

func contentType(f model.Format) string {
	if f == model.FormatVTT {
		return "text/vtt; charset=utf-8"
	}
	return "application/x-subrip; charset=utf-8"
}
