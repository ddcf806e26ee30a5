package api

// FileAttachment is an image attached to a project.
type FileAttachment struct {
	ID        string `json:"_id"`
	ProjectID string `json:"projectId,omitempty"`
	Filename  string `json:"filename,omitempty"`
	URL       string `json:"url,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	Size      int64  `json:"size,omitempty"`
}

// Project is a user-owned folder. Children are nested up to the requested depth.
type Project struct {
	ID                 string           `json:"_id"`
	Name               string           `json:"name"`
	Surname            string           `json:"surname,omitempty"`
	LatestStatusUpdate string           `json:"latestStatusUpdate,omitempty"`
	UserID             string           `json:"userId,omitempty"`
	Files              []FileAttachment `json:"files,omitempty"`
	NestedProjects     []Project        `json:"nestedProjects,omitempty"`
}

// projectsResp is the list envelope.
type projectsResp struct {
	Projects []Project `json:"projects"`
}

type nestRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type surnameRequest struct {
	Surname string `json:"surname"`
}

// errorResp is the optional error body; only the message is surfaced.
type errorResp struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
