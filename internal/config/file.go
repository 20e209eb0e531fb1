package config

// Settings are the values a configuration file can set, either for every
// project or for one of them. Empty values leave the current setting alone.
type Settings struct {
	// Server is the SonarQube server URL.
	Server string `yaml:"server,omitempty"`

	// Branch is the analyzed branch.
	Branch string `yaml:"branch,omitempty"`

	// Author signs the report.
	Author string `yaml:"author,omitempty"`

	// Output is the output directory.
	Output string `yaml:"output,omitempty"`

	// Input is the directory of SonarQube API dumps.
	Input string `yaml:"input,omitempty"`

	// DocxTemplate and XlsxTemplate are custom template paths.
	DocxTemplate string `yaml:"docxTemplate,omitempty"`
	XlsxTemplate string `yaml:"xlsxTemplate,omitempty"`

	// Formats are the output formats.
	Formats []string `yaml:"formats,omitempty"`

	// Archive bundles the outputs into a zip file. A pointer tells an
	// explicit false from an absent value.
	Archive *bool `yaml:"archive,omitempty"`

	// Filename is the output filename pattern.
	Filename string `yaml:"filename,omitempty"`

	// NotAvailable is printed in place of absent statistics.
	NotAvailable string `yaml:"notAvailable,omitempty"`

	// Concurrency is the number of projects processed at once.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// File represents the structure of the .cnesreport configuration file.
type File struct {
	// Defaults apply to every project.
	Defaults Settings `yaml:"defaults,omitempty"`

	// Projects maps project keys to settings overriding the defaults.
	Projects map[string]Settings `yaml:"projects,omitempty"`
}

// ProjectSettings returns the settings of a project: the defaults merged
// with its own entry.
func (cf *File) ProjectSettings(projectKey string) Settings {
	result := cf.Defaults
	result.Formats = append([]string(nil), cf.Defaults.Formats...)

	own, ok := cf.Projects[projectKey]
	if !ok {
		return result
	}
	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&result.Server, own.Server},
		{&result.Branch, own.Branch},
		{&result.Author, own.Author},
		{&result.Output, own.Output},
		{&result.Input, own.Input},
		{&result.DocxTemplate, own.DocxTemplate},
		{&result.XlsxTemplate, own.XlsxTemplate},
		{&result.Filename, own.Filename},
		{&result.NotAvailable, own.NotAvailable},
	} {
		setString(f.dst, f.v)
	}
	if len(own.Formats) > 0 {
		result.Formats = append([]string(nil), own.Formats...)
	}
	if own.Archive != nil {
		archive := *own.Archive
		result.Archive = &archive
	}
	if own.Concurrency > 0 {
		result.Concurrency = own.Concurrency
	}
	return result
}
