package controller

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"order-support-mcp/internal/mcp"
)

// StatsProvider: tamaño del almacén en memoria.
type StatsProvider interface {
	Size() (orders, returns int)
}

const homeTemplateName = "home"

var homeTemplate = template.Must(template.New(homeTemplateName).Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Name}}</title></head>
<body>
<h1>{{.Name}}</h1>
<p>E-commerce customer support tools over the Model Context Protocol.</p>
<ul>
  <li>Streamable HTTP: <code>POST /mcp</code></li>
  <li>SSE: <code>GET /sse</code> then <code>POST /messages?sessionId=...</code></li>
  <li>Stdio: run the binary with the <code>stdio</code> command</li>
</ul>
<h2>Tools</h2>
<ul>
{{range .Tools}}  <li><strong>{{.Name}}</strong>: {{.Description}}</li>
{{end}}</ul>
<p>Try order ids such as ORD-1001, ORD-2001-D (delivered), ORD-2002-S (shipped) or ORD-2003-E (not found).</p>
</body>
</html>
`))

type PagesController struct {
	name  string
	srv   *mcp.Server
	stats StatsProvider
}

func NewPagesController(name string, srv *mcp.Server, stats StatsProvider) *PagesController {
	return &PagesController{name: name, srv: srv, stats: stats}
}

// GET /
func (p *PagesController) Home(c *gin.Context) {
	c.HTML(http.StatusOK, homeTemplateName, gin.H{
		"Name":  p.name,
		"Tools": p.srv.Registry().List(),
	})
}

// GET /healthz
func (p *PagesController) Health(c *gin.Context) {
	out := gin.H{
		"status": "ok",
		"tools":  len(p.srv.Registry().List()),
	}
	if p.stats != nil {
		orders, returns := p.stats.Size()
		out["orders"] = orders
		out["returns"] = returns
	}
	c.JSON(http.StatusOK, out)
}
