package notify

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Subjects are plain text; bodies go through html/template so the
// destination and names are escaped.
var subjects = texttemplate.Must(texttemplate.New("subjects").Parse(`
{{define "invitation.pt"}}Confirme sua presença na viagem para: {{.Destination}} em {{.StartsAt}}{{end}}
{{define "invitation.en"}}Confirm your attendance on the trip to {{.Destination}} on {{.StartsAt}}{{end}}
{{define "confirm_trip.pt"}}Confirme sua viagem para {{.Destination}} em {{.StartsAt}}{{end}}
{{define "confirm_trip.en"}}Confirm your trip to {{.Destination}} on {{.StartsAt}}{{end}}
`))

var bodies = htmltemplate.Must(htmltemplate.New("bodies").Parse(`
{{define "invitation.pt"}}
<div style="font-family: sans-serif; font-size: 16px; line-height: 1.6;">
  <p>Você foi convidado(a) para participar de uma viagem para <strong>{{.Destination}}</strong> nas datas de <strong>{{.StartsAt}} até {{.EndsAt}}</strong>.</p>
  <p></p>
  <p>Para confirmar sua presença na viagem, clique no link abaixo:</p>
  <p></p>
  <p><a href="{{.Link}}">Confirmar presença</a></p>
  <p></p>
  <p>Caso você não saiba do que se trata esse e-mail, apenas ignore esse e-mail.</p>
</div>
{{end}}
{{define "invitation.en"}}
<div style="font-family: sans-serif; font-size: 16px; line-height: 1.6;">
  <p>You have been invited to a trip to <strong>{{.Destination}}</strong> from <strong>{{.StartsAt}} to {{.EndsAt}}</strong>.</p>
  <p></p>
  <p>To confirm your attendance, follow the link below:</p>
  <p></p>
  <p><a href="{{.Link}}">Confirm attendance</a></p>
  <p></p>
  <p>If you don't know what this email is about, just ignore it.</p>
</div>
{{end}}
{{define "confirm_trip.pt"}}
<div style="font-family: sans-serif; font-size: 16px; line-height: 1.6;">
  <p>{{if .Name}}Olá, {{.Name}}! {{end}}Você solicitou a criação de uma viagem para <strong>{{.Destination}}</strong> nas datas de <strong>{{.StartsAt}} até {{.EndsAt}}</strong>.</p>
  <p></p>
  <p>Para confirmar sua viagem, clique no link abaixo:</p>
  <p></p>
  <p><a href="{{.Link}}">Confirmar viagem</a></p>
  <p></p>
  <p>Caso você não saiba do que se trata esse e-mail, apenas ignore esse e-mail.</p>
</div>
{{end}}
{{define "confirm_trip.en"}}
<div style="font-family: sans-serif; font-size: 16px; line-height: 1.6;">
  <p>{{if .Name}}Hi {{.Name}}! {{end}}You asked to create a trip to <strong>{{.Destination}}</strong> from <strong>{{.StartsAt}} to {{.EndsAt}}</strong>.</p>
  <p></p>
  <p>To confirm your trip, follow the link below:</p>
  <p></p>
  <p><a href="{{.Link}}">Confirm trip</a></p>
  <p></p>
  <p>If you don't know what this email is about, just ignore it.</p>
</div>
{{end}}
`))
