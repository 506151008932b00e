package emitter

import "text/template"

var leafTemplate = template.Must(template.New(`leaf`).Parse(`
{{- range .Doc }}
//{{ if . }} {{ . }}{{ end }}
{{- end }}
type {{ .TypeName }} struct{}

// Error returns {{ .Message }}.
func ({{ .TypeName }}) Error() string { return {{ .Message }} }

// Unwrap always returns nil.
func ({{ .TypeName }}) Unwrap() error { return nil }

func ({{ .TypeName }}) GoString() string { return "{{ .TypeName }}{}" }
`))

var wrapTemplate = template.Must(template.New(`wrap`).Parse(`
{{- range .Doc }}
//{{ if . }} {{ . }}{{ end }}
{{- end }}
type {{ .TypeName }} struct {
	kind  {{ .KindType }}
	cause error
}

// {{ .KindType }} identifies the error wrapped by a {{ .TypeName }}.
// Kinds may be added in later versions: switches over a {{ .KindType }}
// must include a default case.
type {{ .KindType }} uint8

const (
{{- range $i, $c := .Cases }}
	{{ $c.Const }}{{ if eq $i 0 }} {{ $.KindType }} = iota + 1{{ end }}
{{- end }}
)

func (k {{ .KindType }}) String() string {
	switch k {
{{- range .Cases }}
	case {{ .Const }}:
		return {{ printf "%q" .Name }}
{{- end }}
	default:
		return fmt.Sprintf("{{ .KindType }}(%d)", uint8(k))
	}
}

// Error returns {{ .Message }} whatever the wrapped error.
func ({{ .TypeName }}) Error() string { return {{ .Message }} }

// Unwrap returns the wrapped error. It is nil only for the zero value.
func (e {{ .TypeName }}) Unwrap() error { return e.cause }

// Kind reports which error e wraps.
func (e {{ .TypeName }}) Kind() {{ .KindType }} { return e.kind }
{{ range .Cases }}
// As{{ .Export }} returns the wrapped {{ .TypePath }} and true if e holds one.
func (e {{ $.TypeName }}) As{{ .Export }}() ({{ .Type }}, bool) {
	err, ok := e.cause.({{ .Type }})
	return err, ok && e.kind == {{ .Const }}
}
{{ end }}
func (e {{ .TypeName }}) GoString() string {
	if e.kind == 0 {
		return "{{ .TypeName }}{}"
	}
	return fmt.Sprintf("{{ .TypeName }}{%v: %#v}", e.kind, e.cause)
}
{{ range .Cases }}
// {{ .Ctor }} wraps err in a {{ $.TypeName }}.
func {{ .Ctor }}(err {{ .Type }}) {{ $.TypeName }} {
	return {{ $.TypeName }}{kind: {{ .Const }}, cause: err}
}
{{ end }}`))
