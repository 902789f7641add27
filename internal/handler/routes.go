package handler

import "net/http"

// Routes registers every API endpoint on mux
func Routes(mux *http.ServeMux, scene *SceneHandler, gen *GenerateHandler, events http.Handler) {
	// Graph endpoint
	mux.HandleFunc("GET /api/graph", scene.GetGraph)

	// Node endpoints
	mux.HandleFunc("POST /api/nodes", scene.CreateNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", scene.DeleteNode)
	mux.HandleFunc("PATCH /api/nodes/{id}/data", scene.UpdateNodeData)
	mux.HandleFunc("PUT /api/nodes/{id}/position", scene.MoveNode)

	// Edge endpoints
	mux.HandleFunc("POST /api/edges", scene.CreateEdge)
	mux.HandleFunc("DELETE /api/edges/{id}", scene.DeleteEdge)
	mux.HandleFunc("POST /api/edges/delete", scene.DeleteEdges)

	mux.HandleFunc("PUT /api/viewport", scene.SetViewport)

	// Document import/export
	mux.HandleFunc("GET /api/document", scene.ExportDocument)
	mux.HandleFunc("POST /api/document", scene.ImportDocument)

	// Render previews
	mux.HandleFunc("GET /api/render/{id}/scene", scene.GetRenderScene)
	mux.HandleFunc("GET /api/render/{id}/mesh", scene.GetRenderMesh)

	// Generation and drafts
	mux.HandleFunc("POST /api/generate-json", gen.Generate)
	mux.HandleFunc("GET /api/drafts", gen.ListDrafts)
	mux.HandleFunc("GET /api/drafts/latest", gen.GetLatestDraft)
	mux.HandleFunc("GET /api/drafts/{id}", gen.GetDraft)
	mux.HandleFunc("POST /api/drafts/{id}/apply", gen.ApplyDraft)

	// SSE events endpoint
	if events != nil {
		mux.Handle("GET /events", events)
	}
}
