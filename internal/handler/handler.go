package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/kataras/golog"

	"qompath/internal/domain"
	"qompath/internal/preview"
	"qompath/internal/service"
	"qompath/internal/store"
)

// maxDocumentBytes bounds imported documents
const maxDocumentBytes = 4 << 20

// SceneHandler handles scene graph API requests
type SceneHandler struct {
	svc       *service.SceneService
	meshCells int
}

// NewSceneHandler creates a new scene handler
func NewSceneHandler(svc *service.SceneService, meshCells int) *SceneHandler {
	return &SceneHandler{svc: svc, meshCells: meshCells}
}

// ErrorResponse is the error body of every endpoint except generation
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreatedResponse is returned when a node or edge is added
type CreatedResponse struct {
	ID     string       `json:"id"`
	Change store.Change `json:"change"`
}

// CreateNodeRequest adds a node; data is optional
type CreateNodeRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CreateEdgeRequest connects two nodes
type CreateEdgeRequest struct {
	Source       string        `json:"source"`
	Target       string        `json:"target"`
	TargetHandle domain.Handle `json:"targetHandle,omitempty"`
}

// DeleteEdgesRequest removes several edges at once
type DeleteEdgesRequest struct {
	IDs []string `json:"ids"`
}

// GetGraph returns the complete graph
func (h *SceneHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Graph-Revision", strconv.FormatUint(h.svc.Revision(), 10))
	writeJSON(w, h.svc.GetGraph(), http.StatusOK)
}

// CreateNode adds a node at a generated position
func (h *SceneHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	kind, err := domain.ParseNodeKind(req.Type)
	if err != nil {
		writeError(w, "Invalid node type", err.Error(), http.StatusBadRequest)
		return
	}

	var data domain.NodeData
	if len(req.Data) > 0 && string(req.Data) != "null" {
		decoded, err := domain.DecodeData(kind, func(target any) error {
			return json.Unmarshal(req.Data, target)
		})
		if err != nil {
			writeError(w, "Invalid node data", err.Error(), http.StatusBadRequest)
			return
		}
		// A new Render node has no inputs; only empty lists are accepted
		if rd, ok := decoded.(domain.RenderData); ok && (len(rd.GeometryIDs) > 0 || len(rd.LightIDs) > 0) {
			writeError(w, "Invalid node data", store.ErrDerivedField.Error(), http.StatusBadRequest)
			return
		}
		data = decoded
	}

	id, change := h.svc.CreateNode(kind, data)
	writeJSON(w, CreatedResponse{ID: id, Change: change}, http.StatusCreated)
}

// DeleteNode removes a node and its edges. Unknown IDs are a no-op.
func (h *SceneHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.DeleteNode(r.PathValue("id")), http.StatusOK)
}

// UpdateNodeData patches color or intensity
func (h *SceneHandler) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r.Body)
	if err != nil {
		writeError(w, "Invalid node data", err.Error(), http.StatusBadRequest)
		return
	}

	change, err := h.svc.UpdateNodeData(r.PathValue("id"), patch)
	if err != nil {
		writeError(w, "Failed to update node", err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, change, http.StatusOK)
}

// decodePatch reads a data patch, refusing the derived Render lists
func decodePatch(body io.Reader) (store.DataPatch, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return store.DataPatch{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return store.DataPatch{}, err
	}
	for _, derived := range []string{"geometryIds", "lightIds"} {
		if _, ok := fields[derived]; ok {
			return store.DataPatch{}, store.ErrDerivedField
		}
	}

	var patch store.DataPatch
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&patch); err != nil {
		return store.DataPatch{}, err
	}
	return patch, nil
}

// MoveNode sets a node's canvas position
func (h *SceneHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos domain.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.svc.MoveNode(r.PathValue("id"), pos), http.StatusOK)
}

// CreateEdge connects two nodes. Unknown endpoints are a no-op and return
// an empty ID.
func (h *SceneHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Source == "" || req.Target == "" {
		writeError(w, "Invalid edge", "source and target are required", http.StatusBadRequest)
		return
	}

	id, change := h.svc.CreateEdge(req.Source, req.Target, req.TargetHandle)
	status := http.StatusCreated
	if change.Empty() {
		status = http.StatusOK
	}
	writeJSON(w, CreatedResponse{ID: id, Change: change}, status)
}

// DeleteEdge removes an edge. Unknown IDs are a no-op.
func (h *SceneHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.DeleteEdge(r.PathValue("id")), http.StatusOK)
}

// DeleteEdges removes several edges in one mutation
func (h *SceneHandler) DeleteEdges(w http.ResponseWriter, r *http.Request) {
	var req DeleteEdgesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.svc.DeleteEdges(req.IDs), http.StatusOK)
}

// SetViewport records the canvas pan/zoom
func (h *SceneHandler) SetViewport(w http.ResponseWriter, r *http.Request) {
	var vp domain.Viewport
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.svc.SetViewport(vp), http.StatusOK)
}

// ExportDocument downloads the scene as JSON or YAML
func (h *SceneHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	format := documentFormat(r)

	var buf bytes.Buffer
	if err := h.svc.ExportDocument(format, &buf); err != nil {
		writeError(w, "Failed to export document", err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=scene.%s", format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		golog.Errorf("handler: failed to write document: %v", err)
	}
}

// ImportDocument replaces the scene with an uploaded document. A document
// that fails to parse leaves the scene untouched.
func (h *SceneHandler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxDocumentBytes)

	change, err := h.svc.ImportDocument(documentFormat(r), body)
	if err != nil {
		writeError(w, "Failed to import document", err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, change, http.StatusOK)
}

// GetRenderScene resolves a Render node's inputs for drawing
func (h *SceneHandler) GetRenderScene(w http.ResponseWriter, r *http.Request) {
	scene, ok := preview.Resolve(h.svc.GetGraph(), r.PathValue("id"))
	if !ok {
		writeError(w, "Not found", "no render node with that id", http.StatusNotFound)
		return
	}
	writeJSON(w, scene, http.StatusOK)
}

// GetRenderMesh tessellates a Render node's geometries
func (h *SceneHandler) GetRenderMesh(w http.ResponseWriter, r *http.Request) {
	scene, ok := preview.Resolve(h.svc.GetGraph(), r.PathValue("id"))
	if !ok {
		writeError(w, "Not found", "no render node with that id", http.StatusNotFound)
		return
	}

	meshes, err := preview.Tessellate(scene, h.meshCells)
	if err != nil {
		golog.Errorf("handler: failed to tessellate %s: %v", scene.RenderID, err)
		writeError(w, "Failed to build mesh", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"renderId": scene.RenderID, "meshes": meshes, "lights": scene.Lights}, http.StatusOK)
}

// Helper functions

func documentFormat(r *http.Request) string {
	if format := r.URL.Query().Get("format"); format != "" {
		return format
	}
	return "json"
}

func contentType(format string) string {
	switch format {
	case "yaml", "yml":
		return "application/x-yaml"
	default:
		return "application/json"
	}
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		golog.Errorf("handler: failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
