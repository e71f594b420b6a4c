package formula

// Each conditional block is its own named template so it can be rendered
// and tested on its own. Sections end with a newline when they emit
// anything and are empty otherwise.
const formulaTemplate = `
{{- define "url"}}  url {{quote .URL}}
{{end}}

{{- define "codesign"}}{{if .Codesign}}    Dir["#{bin}/*"].each do |f|
      system "codesign", "--force", "--sign", "-", f if File.file?(f)
    end
{{end}}{{end}}

{{- define "commands"}}{{range .Commands}}    system {{quote .}}
{{end}}{{end}}

{{- define "install"}}  def install
    bin.install Dir["*"]
{{template "codesign" .}}{{template "commands" .}}  end
{{end}}

{{- define "caveats"}}{{if .Caveat}}{{$tag := delimiter .Caveat}}
  def caveats
    <<~{{$tag}}
{{heredoc .Caveat}}
    {{$tag}}
  end
{{end}}{{end}}

{{- define "formula"}}class {{.ClassName}} < Formula
  desc {{quote .Description}}
  homepage {{quote .Homepage}}
{{template "url" .}}  sha256 {{quote .SHA256}}
  version {{quote .Version}}

{{template "install" .}}{{template "caveats" .}}end
{{end}}`
