package app

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"asterix034/internal/cat034"
	"asterix034/internal/datablock"
	"asterix034/internal/document"
	"asterix034/internal/output"
	"asterix034/internal/validate"
)

// Stats counts what went through a pipeline
type Stats struct {
	Packets         atomic.Uint64
	Blocks          atomic.Uint64
	OtherCategories atomic.Uint64
	Messages        atomic.Uint64
	Records         atomic.Uint64
	DecodeErrors    atomic.Uint64
	Invalid         atomic.Uint64
	Dropped         atomic.Uint64
	WriteErrors     atomic.Uint64
	Truncated       atomic.Uint64
}

// Fields returns the counters as logrus fields
func (s *Stats) Fields() logrus.Fields {
	return logrus.Fields{
		"packets":          s.Packets.Load(),
		"blocks":           s.Blocks.Load(),
		"other_categories": s.OtherCategories.Load(),
		"messages":         s.Messages.Load(),
		"records":          s.Records.Load(),
		"decode_errors":    s.DecodeErrors.Load(),
		"invalid":          s.Invalid.Load(),
		"dropped":          s.Dropped.Load(),
		"write_errors":     s.WriteErrors.Load(),
		"truncated":        s.Truncated.Load(),
	}
}

// Pipeline decodes framed data blocks, validates them and hands them to
// the writer
type Pipeline struct {
	writer      *output.Writer
	logger      *logrus.Logger
	validate    bool
	dropInvalid bool
	stats       Stats
}

// NewPipeline creates a pipeline writing through writer
func NewPipeline(writer *output.Writer, logger *logrus.Logger, validateRecords, dropInvalid bool) *Pipeline {
	return &Pipeline{
		writer:      writer,
		logger:      logger,
		validate:    validateRecords,
		dropInvalid: dropInvalid,
	}
}

// Stats returns the pipeline counters
func (p *Pipeline) Stats() *Stats {
	return &p.stats
}

// HandleBlock decodes one CAT034 block and writes it. Blocks of other
// categories are counted and skipped.
func (p *Pipeline) HandleBlock(block datablock.Block, source string, received time.Time) error {
	p.stats.Blocks.Add(1)

	if !block.IsCAT034() {
		p.stats.OtherCategories.Add(1)
		return nil
	}

	msg, err := cat034.DecodeMessage(block.Data)
	if err != nil {
		p.stats.DecodeErrors.Add(1)
		p.logger.WithError(err).WithFields(logrus.Fields{
			"source": source,
			"data":   hex.EncodeToString(block.Data),
		}).Debug("Failed to decode CAT034 block")
		return err
	}

	p.stats.Messages.Add(1)
	p.stats.Records.Add(uint64(len(msg.Records)))

	meta := output.Meta{Received: received, Source: source}
	if p.validate {
		if problem := validate.Message(msg); problem != nil {
			p.stats.Invalid.Add(1)
			p.logger.WithError(problem).WithField("source", source).Debug("Invalid CAT034 message")
			if p.dropInvalid {
				p.stats.Dropped.Add(1)
				return nil
			}
			meta.Problem = problem
		}
	}

	if err := p.writer.WriteMessage(msg, meta); err != nil {
		p.stats.WriteErrors.Add(1)
		return err
	}
	return nil
}

// HandlePacket frames every block of a datagram. Bytes left after the last
// complete block are discarded.
func (p *Pipeline) HandlePacket(decoder *datablock.Decoder, data []byte, source string, received time.Time) {
	p.stats.Packets.Add(1)

	for _, block := range decoder.Decode(data) {
		// Errors are counted and logged in HandleBlock
		_ = p.HandleBlock(block, source, received)
	}

	if n := decoder.Buffered(); n > 0 {
		p.stats.Truncated.Add(1)
		p.logger.WithFields(logrus.Fields{
			"source": source,
			"bytes":  n,
		}).Debug("Discarding incomplete data block")
		decoder.Reset()
	}
}

// ReadInput reads raw bytes from r. With hexInput the data is hex text and
// whitespace is ignored.
func ReadInput(r io.Reader, hexInput bool) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !hexInput {
		return data, nil
	}

	text := strings.Join(strings.Fields(string(data)), "")
	raw, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return raw, nil
}

// DecodeAll frames data as a stream of data blocks and writes one JSON line
// per CAT034 message to w
func DecodeAll(data []byte, w io.Writer, validateRecords bool, logger *logrus.Logger) (*Stats, error) {
	writer := output.NewWriter(logger, output.NewStreamSink(w))
	pipeline := NewPipeline(writer, logger, validateRecords, false)

	decoder := datablock.NewDecoder(logger)
	pipeline.HandlePacket(decoder, data, "", time.Now().UTC())

	stats := pipeline.Stats()
	if stats.Truncated.Load() > 0 {
		return stats, fmt.Errorf("%w: input ends inside a data block", cat034.ErrSizeInvalid)
	}
	if n := stats.DecodeErrors.Load(); n > 0 {
		return stats, fmt.Errorf("%d data blocks failed to decode", n)
	}
	return stats, nil
}

// ValidateAll decodes and validates every CAT034 block of data, writing one
// line per problem to w
func ValidateAll(data []byte, w io.Writer, logger *logrus.Logger) (int, error) {
	decoder := datablock.NewDecoder(logger, cat034.Category)
	blocks := decoder.Decode(data)
	if decoder.Buffered() > 0 {
		return 0, fmt.Errorf("%w: input ends inside a data block", cat034.ErrSizeInvalid)
	}

	problems := 0
	for i, block := range blocks {
		msg, err := cat034.DecodeMessage(block.Data)
		if err != nil {
			fmt.Fprintf(w, "block %d: %v\n", i, err)
			problems++
			continue
		}
		for j, r := range msg.Records {
			for _, p := range validate.Problems(r) {
				p.Record = j
				fmt.Fprintf(w, "block %d: %v\n", i, p)
				problems++
			}
		}
	}
	return problems, nil
}

// EncodeYAML converts every document of a YAML stream into a data block and
// returns the blocks concatenated
func EncodeYAML(r io.Reader) ([]byte, error) {
	docs, err := document.ParseYAML(r)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	for i, doc := range docs {
		msg, err := doc.Message()
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		encoded, err := msg.Encode()
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out.Write(encoded)
	}
	return out.Bytes(), nil
}
