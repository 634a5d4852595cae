package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"sigs.k8s.io/yaml"
)

// DiffDocuments renders a human-readable dyff report of the changes between
// two JSON-compatible documents. It returns an empty string when they are
// equal.
func DiffDocuments(fromName string, from any, toName string, to any) (string, error) {
	fromInput, err := documentInput(fromName, from)
	if err != nil {
		return "", err
	}
	toInput, err := documentInput(toName, to)
	if err != nil {
		return "", err
	}

	report, err := dyff.CompareInputFiles(fromInput, toInput)
	if err != nil {
		return "", fmt.Errorf("comparing %s and %s: %w", fromName, toName, err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func documentInput(name string, doc any) (ytbx.InputFile, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return ytbx.InputFile{}, fmt.Errorf("encoding %s: %w", name, err)
	}
	y, err := yaml.JSONToYAML(data)
	if err != nil {
		return ytbx.InputFile{}, fmt.Errorf("converting %s to yaml: %w", name, err)
	}
	docs, err := ytbx.LoadYAMLDocuments(y)
	if err != nil {
		return ytbx.InputFile{}, fmt.Errorf("parsing %s: %w", name, err)
	}
	return ytbx.InputFile{Location: name, Documents: docs}, nil
}

func writeReport(w io.Writer, report dyff.Report) error {
	human := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      true,
		OmitHeader:        true,
	}
	if err := human.WriteReport(w); err != nil {
		return fmt.Errorf("rendering diff: %w", err)
	}
	return nil
}
