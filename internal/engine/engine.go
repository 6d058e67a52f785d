// Package engine defines the boundary to the PDF document engine: opening,
// saving, auto-tagging and running JSON-encoded command batches.
package engine

import "context"

// SaveMode selects how a document is written back to disk
type SaveMode int

const (
	// SaveFull rewrites the whole file
	SaveFull SaveMode = iota
	// SaveIncremental appends an update section
	SaveIncremental
)

func (m SaveMode) String() string {
	switch m {
	case SaveFull:
		return "full"
	case SaveIncremental:
		return "incremental"
	default:
		return "unknown"
	}
}

// DataFormat is the encoding of a command parameter payload
type DataFormat int

const (
	DataFormatJSON DataFormat = iota
	DataFormatXML
)

func (f DataFormat) String() string {
	switch f {
	case DataFormatJSON:
		return "json"
	case DataFormatXML:
		return "xml"
	default:
		return "unknown"
	}
}

// TagsParams tunes auto-tagging. The zero value uses engine defaults.
type TagsParams struct {
	// Standard is the structure standard the tags should follow, e.g. "PDF/UA-1"
	Standard string
}

// Engine opens documents and hands out payload streams
type Engine interface {
	OpenDoc(path, password string) (Document, error)
	CreateMemStream() MemStream
}

// Document is an opened PDF exclusively owned by its caller
type Document interface {
	Save(path string, mode SaveMode) error
	AddTags(params TagsParams) error
	Command() Command
	Close() error
}

// Command executes a batch of actions loaded from a stream against its document
type Command interface {
	LoadParamsFromStream(stm MemStream, format DataFormat) error
	Run(ctx context.Context) error
}

// MemStream is an engine-side byte buffer used to transfer command payloads.
// Destroy must be called on every exit path once the stream is no longer needed.
type MemStream interface {
	Write(offset int, data []byte) error
	Read(offset int, p []byte) (int, error)
	Size() int
	Destroy()
}
