package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/go-interpreter/wagon/wasm"
	"github.com/go-interpreter/wagon/wasm/leb128"
)

// Metadata is the contract metadata embedded in the module's
// "contractmeta" custom section. Every field is optional; contracts
// without metadata yield the zero value.
type Metadata struct {
	ContractVersion string
	SDKVersion      string
	BuildDate       string
	Author          string
	Description     string
	Implementation  string
}

// IsEmpty reports whether no metadata field was populated.
func (m Metadata) IsEmpty() bool {
	return m == Metadata{}
}

// ModuleInfo carries high-level module statistics.
type ModuleInfo struct {
	TypeCount     int
	FunctionCount int
	ExportCount   int
}

func moduleInfo(m *wasm.Module) ModuleInfo {
	var info ModuleInfo
	if m.Types != nil {
		info.TypeCount = len(m.Types.Entries)
	}
	if m.Function != nil {
		info.FunctionCount = len(m.Function.Types)
	}
	if m.Export != nil {
		info.ExportCount = len(m.Export.Entries)
	}
	return info
}

// readMetadata scans the raw module bytes for "contractmeta" custom
// sections. The payload is tried as JSON first, then as key=value or
// key: value lines. Absent or unreadable metadata is not an error.
func readMetadata(moduleBytes []byte) Metadata {
	var meta Metadata
	for _, sec := range customSections(moduleBytes) {
		if sec.name != "contractmeta" || !utf8.Valid(sec.data) {
			continue
		}
		parseMetadataPayload(string(sec.data), &meta)
		if !meta.IsEmpty() {
			break
		}
	}
	return meta
}

func parseMetadataPayload(text string, meta *Metadata) {
	var fields map[string]string
	if err := json.Unmarshal([]byte(text), &fields); err == nil {
		for key, value := range fields {
			setMetadataField(meta, key, value)
		}
		return
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var key, value string
		if i := strings.Index(line, "="); i >= 0 {
			key, value = line[:i], line[i+1:]
		} else if i := strings.Index(line, ":"); i >= 0 {
			key, value = line[:i], line[i+1:]
		} else {
			continue
		}
		setMetadataField(meta, strings.TrimSpace(key), strings.TrimSpace(value))
	}
}

func setMetadataField(meta *Metadata, key, value string) {
	switch key {
	case "contract_version", "contractVersion":
		if meta.ContractVersion == "" {
			meta.ContractVersion = value
		}
	case "sdk_version", "sdkVersion":
		if meta.SDKVersion == "" {
			meta.SDKVersion = value
		}
	case "build_date", "buildDate":
		if meta.BuildDate == "" {
			meta.BuildDate = value
		}
	case "author", "organisation", "organization":
		if meta.Author == "" {
			meta.Author = value
		}
	case "description":
		if meta.Description == "" {
			meta.Description = value
		}
	case "implementation", "implementation_notes", "implementationNotes":
		if meta.Implementation == "" {
			meta.Implementation = value
		}
	}
}

type customSection struct {
	name string
	data []byte
}

// customSections walks the top-level section framing and collects the
// custom (id 0) sections. wagon's decoded Module does not retain custom
// section payloads, so the framing is re-read here; any structural
// problem simply ends the scan, since metadata is best-effort.
func customSections(moduleBytes []byte) []customSection {
	const headerLen = 8 // magic + version
	if len(moduleBytes) < headerLen {
		return nil
	}
	r := bytes.NewReader(moduleBytes[headerLen:])

	var sections []customSection
	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			break
		}
		size, err := leb128.ReadVarUint32(r)
		if err != nil || int(size) > r.Len() {
			break
		}
		payload := make([]byte, size)
		if _, err := r.Read(payload); err != nil {
			break
		}
		if id != 0 {
			continue
		}
		pr := bytes.NewReader(payload)
		nameLen, err := leb128.ReadVarUint32(pr)
		if err != nil || int(nameLen) > pr.Len() {
			continue
		}
		name := make([]byte, nameLen)
		if _, err := pr.Read(name); err != nil {
			continue
		}
		data := payload[len(payload)-pr.Len():]
		sections = append(sections, customSection{name: string(name), data: data})
	}
	return sections
}
