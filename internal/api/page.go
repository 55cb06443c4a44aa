package api

import (
	"html/template"
	"net/http"

	"meetsum/internal/model"

	"github.com/gin-gonic/gin"
)

type pageData struct {
	Banner string
	Status string
	Error  string
	Run    *model.Run
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Meeting Summariser</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
.banner { background: #fdecea; border: 1px solid #f5c2c0; padding: .75rem; }
.status { background: #eef6fc; padding: .5rem .75rem; }
.error { color: #a40000; }
.warning { color: #8a6d00; }
pre { white-space: pre-wrap; background: #f7f7f7; padding: .75rem; }
</style>
</head>
<body>
<h1>Meeting Summariser</h1>
{{if .Banner}}<div class="banner" id="config-error">{{.Banner}}</div>{{end}}
<form method="post" action="/" enctype="multipart/form-data">
  <label>Upload meeting audio (mp3, wav, m4a)
    <input type="file" name="audio_file" accept=".mp3,.wav,.m4a">
  </label>
  <button type="submit"{{if .Banner}} disabled{{end}}>Summarise</button>
</form>
{{if .Status}}<p class="status" id="status">{{.Status}}</p>{{end}}
{{if .Error}}<p class="error" id="error">{{.Error}}</p>{{end}}
{{with .Run}}
  {{range .Warnings}}<p class="warning">{{.Message}}</p>{{end}}
  {{if .Transcript}}<h2>Transcript</h2><pre id="transcript">{{.Transcript}}</pre>{{end}}
  {{if .Summary}}<h2>Meeting Summary</h2><pre id="summary">{{.Summary}}</pre>{{end}}
{{end}}
</body>
</html>
`))

// showPage renders the upload page with the most recent run
func (h *Handler) showPage(c *gin.Context) {
	data := pageData{
		Banner: configBanner(h.cfg, h.configErr),
		Run:    h.runs.Latest(),
	}
	if data.Run != nil {
		data.Status, data.Error = runMessages(data.Run)
	}
	c.HTML(http.StatusOK, "page", data)
}

// submitPage handles the browser form upload and renders the outcome inline
func (h *Handler) submitPage(c *gin.Context) {
	data := pageData{Banner: configBanner(h.cfg, h.configErr)}
	if h.configErr != nil {
		c.HTML(http.StatusServiceUnavailable, "page", data)
		return
	}

	file, err := formAudioFile(c)
	if err != nil {
		data.Error = "Please choose an audio file to upload."
		c.HTML(http.StatusBadRequest, "page", data)
		return
	}

	audio, err := h.readUpload(file)
	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusBadRequest, "page", data)
		return
	}

	run := h.submit(c.Request.Context(), audio, file.Filename)
	data.Run = run
	data.Status, data.Error = runMessages(run)
	c.HTML(httpStatusFor(run), "page", data)
}

// runMessages returns the last status line and the failure text, if any
func runMessages(run *model.Run) (status, errMsg string) {
	if n := len(run.History); n > 0 && run.Failure == nil {
		status = run.History[n-1].Message
	}
	if run.Failure != nil {
		errMsg = run.Failure.Message
	}
	return status, errMsg
}
