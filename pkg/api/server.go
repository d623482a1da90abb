// Package api provides the REST API server driving the MIDI parser,
// the node-graph executor, and scene/project state over HTTP.
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/jamesa08/midianimator-go/pkg/appstate"
	"github.com/jamesa08/midianimator-go/pkg/graph"
	"github.com/jamesa08/midianimator-go/pkg/graph/nodes"
	"github.com/jamesa08/midianimator-go/pkg/midi"
	"github.com/jamesa08/midianimator-go/pkg/scenesync"
	"github.com/jamesa08/midianimator-go/pkg/transport"
)

// @title MIDI Animator API
// @version 1.0
// @description API for parsing MIDI files and driving procedural 3D animation synthesis
// @host localhost:8080
// @BasePath /api/v1

// Server bundles the shared state the HTTP handlers act on.
type Server struct {
	store     *appstate.Store
	transport *transport.Server
	syncer    *scenesync.Syncer
	executor  *graph.Executor
	parser    *midi.Parser
}

// NewServer wires a Server from an already-started Transport and its
// backing AppState store.
func NewServer(store *appstate.Store, t *transport.Server) *Server {
	return &Server{
		store:     store,
		transport: t,
		syncer:    scenesync.New(t, store),
		executor:  graph.NewExecutor(nodes.DefaultRegistry(store, t)),
		parser:    midi.NewParser(),
	}
}

// Start runs the router on the given port; blocks until the server exits.
func (s *Server) Start(port int) error {
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", s.healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)
		v1.POST("/midi/parse", s.handleMIDIParse)
		v1.GET("/state", s.handleStateGet)
		v1.POST("/state/ready", s.handleStateReady)
		v1.POST("/state/update", s.handleStateUpdate)
		v1.POST("/graph/execute", s.handleGraphExecute)
		v1.POST("/project/save", s.handleProjectSave)
		v1.GET("/project/load", s.handleProjectLoad)
		v1.POST("/scene/reconnect", s.handleSceneReconnect)
		v1.GET("/scene/diff", s.handleSceneDiff)
		v1.POST("/scene/accept", s.handleSceneAccept)
		v1.POST("/scene/reject", s.handleSceneReject)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
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

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "midianimator",
	})
}

// handleMIDIParse godoc
// @Summary Parse a MIDI file
// @Description Upload a Standard MIDI File and receive its parsed track data plus duration statistics
// @Tags midi
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to parse"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/midi/parse [post]
func (s *Server) handleMIDIParse(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	parsed, err := s.parser.Parse(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tracks": parsed.Tracks,
		"stats":  nodes.MIDIFileStatistics(parsed.Tracks),
	})
}

// handleStateGet godoc
// @Summary Fetch the current AppState snapshot
// @Tags state
// @Produce json
// @Success 200 {object} appstate.State
// @Router /api/v1/state [get]
func (s *Server) handleStateGet(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

// handleStateReady godoc
// @Summary Mark the application ready
// @Tags state
// @Produce json
// @Success 200 {object} appstate.State
// @Router /api/v1/state/ready [post]
func (s *Server) handleStateReady(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Ready())
}

// handleStateUpdate godoc
// @Summary Replace AppState wholesale from a JSON body
// @Tags state
// @Accept json
// @Produce json
// @Success 200 {object} appstate.State
// @Failure 400 {object} map[string]string
// @Router /api/v1/state/update [post]
func (s *Server) handleStateUpdate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	if err := s.store.UpdateFromJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.store.Snapshot())
}

// graphExecuteRequest is the rf_instance plus the realtime flag to
// execute it under.
type graphExecuteRequest struct {
	Instance graph.Instance `json:"rf_instance"`
	Realtime bool           `json:"realtime"`
}

// handleGraphExecute godoc
// @Summary Execute a node graph
// @Tags graph
// @Accept json
// @Produce json
// @Success 200 {object} graph.Result
// @Failure 400 {object} map[string]string
// @Router /api/v1/graph/execute [post]
func (s *Server) handleGraphExecute(c *gin.Context) {
	var req graphExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.executor.ExecuteGraph(req.Instance, req.Realtime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.store.Mutate(func(st *appstate.State) {
		st.ExecutedResults = toAnyMap(result.Results)
		st.ExecutedInputs = toAnyMap(result.Inputs)
	})

	c.JSON(http.StatusOK, result)
}

func toAnyMap[V any](m map[string]V) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// handleProjectSave godoc
// @Summary Save the current project as a .mkproj JSON envelope
// @Tags project
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/v1/project/save [post]
func (s *Server) handleProjectSave(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	if err := s.store.SaveProject(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// handleProjectLoad godoc
// @Summary Load a project from a .mkproj JSON envelope body
// @Tags project
// @Accept json
// @Produce json
// @Success 200 {object} appstate.State
// @Failure 400 {object} map[string]string
// @Router /api/v1/project/load [get]
func (s *Server) handleProjectLoad(c *gin.Context) {
	snap, err := s.store.LoadProject(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleSceneReconnect godoc
// @Summary Reconnect to the host and validate the scene snapshot
// @Tags scene
// @Produce json
// @Success 200 {object} scenemodel.Diff
// @Failure 500 {object} map[string]string
// @Router /api/v1/scene/reconnect [post]
func (s *Server) handleSceneReconnect(c *gin.Context) {
	diff, err := s.syncer.ReconnectWithValidation()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, diff)
}

// handleSceneDiff godoc
// @Summary Diff the saved scene against pending scene data
// @Tags scene
// @Produce json
// @Success 200 {object} scenemodel.Diff
// @Failure 400 {object} map[string]string
// @Router /api/v1/scene/diff [get]
func (s *Server) handleSceneDiff(c *gin.Context) {
	diff, err := s.syncer.CheckSceneChanges()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, diff)
}

// handleSceneAccept godoc
// @Summary Accept pending scene changes
// @Tags scene
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /api/v1/scene/accept [post]
func (s *Server) handleSceneAccept(c *gin.Context) {
	if err := s.syncer.AcceptSceneChanges(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleSceneReject godoc
// @Summary Reject pending scene changes
// @Tags scene
// @Success 204
// @Router /api/v1/scene/reject [post]
func (s *Server) handleSceneReject(c *gin.Context) {
	s.syncer.RejectSceneChanges()
	c.Status(http.StatusNoContent)
}
