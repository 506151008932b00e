package generator

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"gitlab.com/kyle_anderson/quickerr/pkg/emitter"
)

type fileProcessingJob struct {
	fset     *token.FileSet
	file     *ast.File
	filename string
	mode     mode
}

/*
	Processes incoming file jobs on the given channel.

Any errors encountered in the process will be sent on the errs channel.
This channel will not be closed by the processor so that it can be used
by multiple processors running in parallel.
*/
func (g *Generator) processor(jobs <-chan fileProcessingJob, errs chan<- *ErrFileProcessing) {
	for job := range jobs {
		if err := g.processFile(job); err != nil {
			g.logger.Debug("file failed", zap.String("file", job.filename), zap.Error(err))
			errs <- err
		}
	}
}

func (g *Generator) processFile(job fileProcessingJob) *ErrFileProcessing {
	outputPath := g.destName(job.filename)
	formErr := func(e error) *ErrFileProcessing {
		return &ErrFileProcessing{e, job.filename, outputPath}
	}
	blocks, err := extractBlocks(job.fset, job.file)
	if err != nil {
		return formErr(err)
	}
	if len(blocks) == 0 {
		if err := g.removeStale(outputPath, job.mode); err != nil {
			return formErr(err)
		}
		return nil
	}
	units := make([]*emitter.Code, len(blocks))
	for i, b := range blocks {
		code, err := emitter.Emit(b.spec, b.doc...)
		if err != nil {
			return formErr(&ErrBlock{Pos: b.pos, Err: err})
		}
		units[i] = code
	}
	output, err := emitter.EmitFile(emitter.File{Name: outputPath, Package: job.file.Name.Name, Header: g.cfg.Header, Units: units})
	if err != nil {
		return formErr(fmt.Errorf(`generator.processFile: failed to generate file: %w`, err))
	}
	if job.mode == modeCheck {
		if err := checkOutput(outputPath, output); err != nil {
			return formErr(err)
		}
		return nil
	}
	if err := writeOutput(outputPath, output); err != nil {
		return formErr(err)
	}
	g.logger.Info("generated", zap.String("file", outputPath), zap.Int("types", len(units)))
	return nil
}

func writeOutput(path string, content []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf(`generator.writeOutput: failed to create output file: %w`, err)
	}
	defer file.Close()
	buf := bufio.NewWriter(file)
	if _, err := buf.Write(content); err != nil {
		return fmt.Errorf(`generator.writeOutput: failed to write: %w`, err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf(`generator.writeOutput: failed to flush: %w`, err)
	}
	return nil
}

func checkOutput(path string, expected []byte) error {
	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &ErrStale{File: path, Reason: "missing"}
	case err != nil:
		return fmt.Errorf(`generator.checkOutput: failed to read: %w`, err)
	case !bytes.Equal(existing, expected):
		return &ErrStale{File: path, Reason: "out of date"}
	}
	return nil
}

/* Removes a file previously generated from a source that no longer has blocks. Files not carrying the header are kept. */
func (g *Generator) removeStale(path string, m mode) error {
	if !g.wroteFile(path) {
		return nil
	}
	if m == modeCheck {
		return &ErrStale{File: path, Reason: "left over from a source without quickerr blocks"}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf(`generator.removeStale: %w`, err)
	}
	g.logger.Info("removed stale output", zap.String("file", path))
	return nil
}

/* Determines if the file at path starts with the header this generator writes. */
func (g *Generator) wroteFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()
	firstLine, err := bufio.NewReader(file).ReadString('\n')
	if err != nil {
		return false
	}
	return firstLine == "// "+g.cfg.Header+"\n"
}
