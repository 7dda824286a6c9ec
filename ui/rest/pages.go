package rest

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "waiting"}}<html>
  <head>
    <title>QR Code - PieBot</title>
    <meta http-equiv="refresh" content="5">
  </head>
  <body style="text-align: center; padding: 50px;">
    <h1>Aguardando QR Code...</h1>
    <p>Esta página atualiza automaticamente a cada 5 segundos</p>
  </body>
</html>{{end}}

{{define "qr"}}<html>
  <head>
    <title>QR Code - PieBot</title>
    <meta http-equiv="refresh" content="30">
  </head>
  <body style="text-align: center; padding: 50px;">
    <h1>Escaneie o QR Code</h1>
    <img src="{{.Image}}" alt="QR Code" style="border: 2px solid #333;">
    <p>Página atualiza a cada 30 segundos</p>
  </body>
</html>{{end}}

{{define "connected"}}<html>
  <head><title>QR Code - PieBot</title></head>
  <body style="text-align: center; padding: 50px;">
    <h1>✅ Conectado</h1>
    <p>A sessão já está autenticada. <a href="/">Voltar</a></p>
  </body>
</html>{{end}}

{{define "index"}}<html>
  <head><title>PieBot</title></head>
  <body style="padding: 50px;">
    <h1>PieBot 🤖</h1>
    <p>Status: {{if .Session.Ready}}✅ Online{{else}}⏳ Iniciando...{{end}} ({{.Session.State}})</p>
    {{if .Session.ReadySince}}<p>Conectado: {{.Online}}</p>{{end}}
    <p>Tentativas de reconexão: {{.Session.ReconnectAttempts}}</p>
    <p>Mensagens na fila: {{.Session.QueuedMessages}}</p>
    <p>Figurinhas criadas: {{.Created}} ({{.Output}})</p>
    <ul>
      <li><a href="/qr">Ver QR Code</a></li>
      <li><a href="/health">Health Check</a></li>
      <li><a href="/api/stats">Estatísticas</a></li>
    </ul>
  </body>
</html>{{end}}
`))

func renderPage(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
