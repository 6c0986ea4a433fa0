// swaggo annotation stubs. Each function below documents one route; the
// handlers live in the closures passed to handleGet/handlePost. The document
// served at /api/openapi.json is internal/apidocs.
package routes

// projectList is the body of GET /api/projects.
type projectList struct {
	Projects []struct {
		ProjectID string `json:"project_id" example:"2f1c9d1e-7a52-4b8e-9a51-0c6b1f3e2a10"`
		CreatedAt string `json:"created_at" example:"2026-10-18T09:30:00Z"`
	} `json:"projects"`
}

type apiError struct {
	Error string `json:"error" example:"Failed to generate site."`
}

type statusOK struct {
	Status string `json:"status" example:"deleted"`
}

// swagProjects is a documentation stub for GET /api/projects.
//
//	@Summary	List projects, newest first
//	@Tags		projects
//	@Produce	json
//	@Success	200	{object}	projectList
//	@Failure	502	{object}	apiError	"store failure"
//	@Router		/api/projects [get]
func swagProjects() {}

// swagProjectExport is a documentation stub for GET /api/projects/export.
//
//	@Summary	Download a project as a ZIP archive
//	@Tags		projects
//	@Produce	application/zip
//	@Param		project	query	string	true	"project id"
//	@Success	200	{file}		file
//	@Failure	404	{object}	apiError	"unknown project"
//	@Router		/api/projects/export [get]
func swagProjectExport() {}

// swagProjectImport is a documentation stub for POST /api/projects/import.
//
//	@Summary	Import a ZIP archive as a new project
//	@Tags		projects
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"archive"
//	@Failure	400		{object}	apiError	"bad archive"
//	@Router		/api/projects/import [post]
func swagProjectImport() {}

// swagFileSave is a documentation stub for POST /api/projects/file/save.
//
//	@Summary	Save one file, last write wins
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		body	body		fileRequest	true	"file"
//	@Failure	400		{object}	apiError	"invalid name"
//	@Router		/api/projects/file/save [post]
func swagFileSave() {}

// swagProjectDelete is a documentation stub for POST /api/projects/delete.
//
//	@Summary	Delete a project and all of its records
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		body	body		projectRequest	true	"project"
//	@Success	200		{object}	statusOK
//	@Failure	404		{object}	apiError	"no such project"
//	@Router		/api/projects/delete [post]
func swagProjectDelete() {}

// swagGenerate is a documentation stub for POST /api/generate.
//
//	@Summary	Generate a site from a prompt
//	@Description	Files returned by the backend are stored as a new project.\nA second request from the same session while one runs gets 409.
//	@Tags		generate
//	@Accept		json
//	@Produce	json
//	@Param		body	body		generateRequest	true	"prompt"
//	@Success	200		{object}	generateResponse
//	@Failure	400		{object}	apiError	"empty prompt"
//	@Failure	409		{object}	apiError	"generation already running"
//	@Failure	502		{object}	apiError	"backend failure"
//	@Router		/api/generate [post]
func swagGenerate() {}

// swagEditorOp is a documentation stub for POST /api/editor/{op}.
//
//	@Summary	Apply an editor operation
//	@Tags		editor
//	@Accept		json
//	@Produce	json
//	@Param		op		path		string			true	"open, close, edit, save, toggle, insert or remove"
//	@Param		body	body		editorRequest	true	"operation"
//	@Failure	400		{object}	apiError
//	@Failure	404		{object}	apiError
//	@Router		/api/editor/{op} [post]
func swagEditorOp() {}

// swagPreviewLive is a documentation stub for GET /preview/live.
//
//	@Summary	Websocket stream of recomposed documents
//	@Description	Each message is {project, root, doc, at}.
//	@Tags		preview
//	@Param		project	query	string	true	"project id"
//	@Router		/preview/live [get]
func swagPreviewLive() {}
