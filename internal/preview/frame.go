package preview

import (
	"bytes"
	"html/template"
)

var frameTmpl = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>html,body{margin:0;height:100%;background:#111}iframe{border:0;width:100%;height:100%;background:#fff}</style>
</head>
<body>
<iframe id="preview" sandbox="{{.Sandbox}}" srcdoc="{{.Doc}}"></iframe>
{{- if .LiveURL}}
<script>
(function () {
  var frame = document.getElementById("preview");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + {{.LiveURL}});
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.doc !== undefined) frame.srcdoc = msg.doc;
  };
})();
</script>
{{- end}}
</body>
</html>
`))

// FrameData fills the host page around a composed document.
type FrameData struct {
	Title   string
	Sandbox string
	Doc     string
	LiveURL string // websocket path; empty disables live reload
}

// Frame renders a host page that shows doc inside a sandboxed iframe via
// srcdoc. The document is attribute-escaped by html/template.
func Frame(d FrameData) (string, error) {
	if d.Sandbox == "" {
		d.Sandbox = "allow-scripts"
	}
	var buf bytes.Buffer
	if err := frameTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
