package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxUploadSize bounds the image read into memory for an upload.
const MaxUploadSize = 20 << 20

// AllowedImageTypes are the content types accepted for upload.
var AllowedImageTypes = []string{"image/jpeg", "image/png"}

// AllowedImageExts mirrors AllowedImageTypes for file pickers.
var AllowedImageExts = []string{".jpg", ".jpeg", ".png"}

// UploadRequest describes one image upload.
type UploadRequest struct {
	ProjectID string
	UserID    string
	Surname   string
	Filename  string
	Content   io.Reader
}

func (r UploadRequest) validate() error {
	return validation.Errors{
		"projectId": validation.Validate(r.ProjectID, validation.Required),
		"userId":    validation.Validate(r.UserID, validation.Required),
		"filename":  validation.Validate(r.Filename, validation.Required),
		"content":   validation.Validate(r.Content, validation.NotNil),
	}.Filter()
}

// UploadFile sends an image as multipart form data with the parts image,
// userId, projectId and surname. Content that does not sniff as JPEG or PNG
// is rejected before any request is made.
func (c *Client) UploadFile(ctx context.Context, r UploadRequest) error {
	if err := r.validate(); err != nil {
		return invalid(OpUploadFile, err)
	}
	data, err := io.ReadAll(io.LimitReader(r.Content, MaxUploadSize+1))
	if err != nil {
		return invalid(OpUploadFile, fmt.Errorf("read image: %w", err))
	}
	if len(data) > MaxUploadSize {
		return invalid(OpUploadFile, fmt.Errorf("image larger than %d bytes", MaxUploadSize))
	}
	mt, err := DetectImage(data)
	if err != nil {
		return invalid(OpUploadFile, err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filepath.Base(r.Filename))))
	h.Set("Content-Type", mt)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	fields := [][2]string{{"userId", r.UserID}, {"projectId", r.ProjectID}, {"surname", r.Surname}}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.send(ctx, OpUploadFile, http.MethodPost, "/api/files/"+url.PathEscape(r.ProjectID)+"/add", &body, w.FormDataContentType())
}

// UploadFromPath opens path and uploads it to projectID. The surname part
// carries the project id.
func (c *Client) UploadFromPath(ctx context.Context, projectID, userID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return invalid(OpUploadFile, err)
	}
	defer f.Close()
	return c.UploadFile(ctx, UploadRequest{
		ProjectID: projectID,
		UserID:    userID,
		Surname:   projectID,
		Filename:  path,
		Content:   f,
	})
}

// DetectImage sniffs data and returns its content type if it is an allowed image.
func DetectImage(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for _, allowed := range AllowedImageTypes {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", fmt.Errorf("unsupported file type %s (want JPEG or PNG)", mt.String())
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
