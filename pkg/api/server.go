// Package api provides the REST API server for ym2151tone
package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/ym2151tone/pkg/converter"
	"github.com/james-see/ym2151tone/pkg/debug"
	"github.com/james-see/ym2151tone/pkg/pitch"
	"github.com/james-see/ym2151tone/pkg/tone"
)

// @title YM2151 Tone API
// @version 1.0
// @description API for converting YM2151 tones between grid, register hex and JSON log forms
// @host localhost:8080
// @BasePath /api/v1

// maxBodySize caps uploaded payloads; a full tone log is a few kilobytes
const maxBodySize = 1 << 20

// HexResponse carries a register hex string
type HexResponse struct {
	Hex        string `json:"hex"`
	EventCount int    `json:"event_count"`
}

// EncodeResponse is the result of encoding a grid
type EncodeResponse struct {
	Hex string            `json:"hex"`
	Log converter.LogJSON `json:"log"`
}

// DecodeRequest holds a register hex string to decode
type DecodeRequest struct {
	Hex string `json:"hex" binding:"required"`
}

// PitchResponse describes the key code for a MIDI note
type PitchResponse struct {
	Note  int    `json:"note"`
	Name  string `json:"name"`
	KC    string `json:"kc"`
	KF    string `json:"kf"`
	Exact bool   `json:"exact"`
}

// KeyCodeResponse describes the MIDI note for a key code
type KeyCodeResponse struct {
	KC   string `json:"kc"`
	Note int    `json:"note"`
	Name string `json:"name"`
}

// NewRouter builds the gin engine with all routes registered
func NewRouter() *gin.Engine {
	r := gin.Default()

	// CORS and debug log middleware
	r.Use(corsMiddleware(), debugLogMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.POST("/convert/hex2json", handleHexToJSON)
		v1.POST("/convert/json2hex", handleJSONToHex)
		v1.POST("/tone/encode", handleToneEncode)
		v1.POST("/tone/decode", handleToneDecode)
		v1.POST("/tone/midi", handleToneMIDI)
		v1.GET("/pitch/:note", handlePitch)
		v1.GET("/keycode/:kc", handleKeyCode)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// debugLogMiddleware records every request in the debug log when it is enabled
func debugLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		debug.Log("api", "%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// codecError reports a decode failure with its kind when it has one
func codecError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	kind := converter.KindName(err)
	if kind != "" {
		body["kind"] = kind
	}
	debug.Log("api", "%s: codec error kind=%q: %v", c.Request.URL.Path, kind, err)
	c.JSON(http.StatusBadRequest, body)
}

// readInput returns an uploaded "file" form field or the raw request body
func readInput(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("no file uploaded")
		}
		defer func() { _ = file.Close() }()
		return io.ReadAll(file)
	}
	return io.ReadAll(c.Request.Body)
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ym2151tone",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"hex", "json", "tone", "midi"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// handleHexToJSON godoc
// @Summary Convert register hex to a JSON log
// @Description Send a hex string as the body or as a "file" upload and receive the JSON register log
// @Tags convert
// @Accept plain
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} converter.LogJSON
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/hex2json [post]
func handleHexToJSON(c *gin.Context) {
	data, err := readInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := converter.HexToEvents(strings.TrimSpace(string(data)))
	if err != nil {
		codecError(c, err)
		return
	}

	out, err := converter.EventsToJSON(events)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

// handleJSONToHex godoc
// @Summary Convert a JSON log to register hex
// @Description Send a JSON register log and receive the concatenated hex string
// @Tags convert
// @Accept json
// @Produce json
// @Success 200 {object} HexResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/json2hex [post]
func handleJSONToHex(c *gin.Context) {
	data, err := readInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := converter.JSONToEvents(data)
	if err != nil {
		codecError(c, err)
		return
	}
	c.JSON(http.StatusOK, HexResponse{Hex: converter.EventsToHex(events), EventCount: len(events)})
}

// handleToneEncode godoc
// @Summary Encode a parameter grid
// @Description Send a grid and receive its register writes as hex and as a JSON log
// @Tags tone
// @Accept json
// @Produce json
// @Success 200 {object} EncodeResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/tone/encode [post]
func handleToneEncode(c *gin.Context) {
	g, ok := bindGrid(c)
	if !ok {
		return
	}
	events := converter.ToRegisterEvents(g)
	c.JSON(http.StatusOK, EncodeResponse{
		Hex: converter.EventsToHex(events),
		Log: converter.ToLogJSON(events),
	})
}

// handleToneDecode godoc
// @Summary Decode register hex into a grid
// @Description Send {"hex": "..."} and receive the parameter grid
// @Tags tone
// @Accept json
// @Produce json
// @Param request body DecodeRequest true "Register hex"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/tone/decode [post]
func handleToneDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := converter.HexToGrid(req.Hex)
	if err != nil {
		codecError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grid": g})
}

// handleToneMIDI godoc
// @Summary Render a grid as a MIDI preview
// @Description Send a grid and receive a one-note Standard MIDI File carrying the register hex
// @Tags tone
// @Accept json
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/tone/midi [post]
func handleToneMIDI(c *gin.Context) {
	g, ok := bindGrid(c)
	if !ok {
		return
	}
	data, err := converter.GenerateMIDI(g)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=tone.mid")
	c.Data(http.StatusOK, "audio/midi", data)
}

func bindGrid(c *gin.Context) (tone.Grid, bool) {
	data, err := readInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return tone.Grid{}, false
	}
	var g tone.Grid
	if err := g.UnmarshalJSON(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return tone.Grid{}, false
	}
	return g, true
}

// handlePitch godoc
// @Summary Key code for a MIDI note
// @Description Returns KC and KF for a MIDI note, optionally detuned by cents (0-99)
// @Tags pitch
// @Produce json
// @Param note path int true "MIDI note (0-127)"
// @Param cents query int false "Fine tune in cents"
// @Success 200 {object} PitchResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/pitch/{note} [get]
func handlePitch(c *gin.Context) {
	note, err := strconv.Atoi(c.Param("note"))
	if err != nil || note < 0 || note > 127 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note must be 0-127"})
		return
	}
	cents, err := strconv.Atoi(c.DefaultQuery("cents", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cents must be an integer"})
		return
	}

	kc, kf := pitch.MIDIToKCKFCents(uint8(note), cents)
	c.JSON(http.StatusOK, PitchResponse{
		Note:  note,
		Name:  pitch.NoteName(uint8(note)),
		KC:    fmt.Sprintf("0x%02X", kc),
		KF:    fmt.Sprintf("0x%02X", kf),
		Exact: pitch.IsExact(uint8(note)),
	})
}

// handleKeyCode godoc
// @Summary MIDI note for a key code
// @Description Returns the nearest MIDI note for a KC byte given in hex
// @Tags pitch
// @Produce json
// @Param kc path string true "Key code, e.g. 3E or 0x3E"
// @Success 200 {object} KeyCodeResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/keycode/{kc} [get]
func handleKeyCode(c *gin.Context) {
	raw := strings.TrimPrefix(strings.ToLower(c.Param("kc")), "0x")
	kc, err := strconv.ParseUint(raw, 16, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kc must be one hex byte"})
		return
	}

	note := pitch.KCToMIDINote(uint8(kc))
	c.JSON(http.StatusOK, KeyCodeResponse{
		KC:   fmt.Sprintf("0x%02X", kc),
		Note: int(note),
		Name: pitch.NoteName(note),
	})
}
