package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"edgevision/internal/codec"
	"edgevision/internal/models"
	"edgevision/internal/opencv/safe"
	"edgevision/internal/processing"

	"github.com/gin-gonic/gin"
)

type uploadResponse struct {
	ImageID string `json:"image_id"`
	Format  string `json:"format"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type algorithmInfo struct {
	Name           string `json:"name"`
	UsesKernelSize bool   `json:"uses_ksize"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "edgevision",
	})
}

func (s *Server) handleStats(c *gin.Context) {
	body := gin.H{
		"images":       s.repo.Len(),
		"stored_bytes": s.repo.Bytes(),
	}

	if s.memory != nil {
		body["rasters"] = s.memory.GetStats()
	}
	if s.timing != nil {
		timings := make(map[string]float64)
		for op, d := range s.timing.Averages() {
			timings[op] = float64(d.Microseconds()) / 1000
		}
		body["avg_timings_ms"] = timings
	}

	c.JSON(http.StatusOK, body)
}

func (s *Server) handleAlgorithms(c *gin.Context) {
	algorithms := make([]algorithmInfo, 0, len(processing.Algorithms()))
	for _, alg := range processing.Algorithms() {
		algorithms = append(algorithms, algorithmInfo{
			Name:           alg.String(),
			UsesKernelSize: alg.UsesKernelSize(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"algorithms": algorithms,
		"defaults":   processing.DefaultParameters(),
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	if c.Request.ContentLength > s.cfg.MaxUploadBytes {
		sendError(c, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(c, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
			return
		}
		sendError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		sendError(c, http.StatusBadRequest, "File must be an image")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, "Could not read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Could not read upload")
		return
	}

	var tracker safe.MemoryTracker
	if s.memory != nil {
		tracker = s.memory
	}
	info, err := codec.Inspect(data, tracker)
	if err != nil {
		s.logger.Warning(component, "rejected upload", map[string]interface{}{
			"content_type": contentType,
			"size":         len(data),
			"reason":       err.Error(),
		})
		sendError(c, http.StatusBadRequest, "File is not a supported image")
		return
	}

	stored := s.repo.Put(models.StoredImage{
		Data:        data,
		ContentType: contentType,
		Format:      info.Format,
		Width:       info.Width,
		Height:      info.Height,
	})

	s.logger.Info(component, "image uploaded", map[string]interface{}{
		"image_id": stored.ID,
		"format":   info.Format,
		"width":    info.Width,
		"height":   info.Height,
	})

	c.JSON(http.StatusOK, uploadResponse{
		ImageID: stored.ID,
		Format:  info.Format,
		Width:   info.Width,
		Height:  info.Height,
	})
}

func (s *Server) handleProcess(c *gin.Context) {
	img, ok := s.lookup(c)
	if !ok {
		return
	}

	algorithm := c.PostForm("algorithm")
	if algorithm == "" {
		sendError(c, http.StatusBadRequest, "algorithm is required")
		return
	}

	params := decodeParams(c.PostForm("params"))

	out, err := s.processor.Process(c.Request.Context(), img.Data, algorithm, params)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Processing failed")
		return
	}

	c.Data(http.StatusOK, "image/png", out)
}

func (s *Server) handleHistogram(c *gin.Context) {
	img, ok := s.lookup(c)
	if !ok {
		return
	}

	counts, err := s.processor.Histogram(img.Data)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Histogram failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"histogram": counts})
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.repo.Delete(c.Param("id")); err != nil {
		sendError(c, http.StatusNotFound, "Image not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) lookup(c *gin.Context) (*models.StoredImage, bool) {
	img, err := s.repo.Get(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusNotFound, "Image not found")
		return nil, false
	}
	return img, true
}

// decodeParams parses the params form field. Anything that is not a JSON
// object yields an empty map so defaults apply.
func decodeParams(raw string) map[string]interface{} {
	params := map[string]interface{}{}
	if strings.TrimSpace(raw) == "" {
		return params
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return map[string]interface{}{}
	}
	return params
}
