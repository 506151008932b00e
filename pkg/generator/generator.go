/*
Provides the code generator that scans Go source files for quickerr blocks and
writes the generated error types next to them.

A block is written inside any comment:

	// NotFound is returned when a lookup misses.
	// quickerr! {
	//     pub NotFound "resource not found"
	// }

Comment lines before the block, in the same comment group, become the doc
comment of the generated type. Each source file containing blocks gets one
generated file: x.go is generated into x.gen.go, x_test.go into x.gen_test.go.
*/
package generator

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"gitlab.com/kyle_anderson/go-utils/pkg/uerrors"
	"gitlab.com/kyle_anderson/go-utils/pkg/umath"
	"go.uber.org/zap"

	"gitlab.com/kyle_anderson/quickerr/pkg/config"
)

type mode uint8

const (
	modeWrite mode = iota
	/* Compare outputs with the files on disk instead of writing them. */
	modeCheck
)

type Generator struct {
	cfg    config.Config
	logger *zap.Logger
	/* Matches the names of files this generator writes. */
	generatedFileRegex *regexp.Regexp
}

/* Creates a generator. A nil logger discards all logs; an empty suffix or header takes its default. */
func New(cfg config.Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := config.Default()
	if cfg.Suffix == "" {
		cfg.Suffix = defaults.Suffix
	}
	if cfg.Header == "" {
		cfg.Header = defaults.Header
	}
	return &Generator{
		cfg:                cfg,
		logger:             logger,
		generatedFileRegex: regexp.MustCompile(`\.` + regexp.QuoteMeta(cfg.Suffix) + `(_test)?\.go$`),
	}
}

/*
Generates the error types for all quickerr blocks in the Go files of dir using
the default configuration.
*/
func Generate(dir string) error {
	return New(config.Default(), nil).Generate(dir)
}

/*
Generates the error types for all quickerr blocks in the Go files of dir.
Generated files left behind by sources that no longer contain blocks are removed.
An aggregate error, implementing [gitlab.com/kyle_anderson/go-utils/pkg/uerrors.Aggregate]
may be returned if multiple files failed; files that failed are left untouched.
*/
func (g *Generator) Generate(dir string) error {
	return g.run(dir, modeWrite)
}

/*
Reports an *ErrStale for every generated file in dir that is missing, out of
date or left behind, without modifying anything.
*/
func (g *Generator) Check(dir string) error {
	return g.run(dir, modeCheck)
}

/*
Determines if the given file is a generated Go source file.
Assumes that the file has already been verified to be a Go source file.
*/
func (g *Generator) isGeneratedFile(name string) bool {
	return g.generatedFileRegex.MatchString(name)
}

/* Maps a source file name to the name of the file generated from it. */
func (g *Generator) destName(sourceFileName string) string {
	if base, ok := strings.CutSuffix(sourceFileName, "_test.go"); ok {
		return base + "." + g.cfg.Suffix + "_test.go"
	}
	return strings.TrimSuffix(sourceFileName, ".go") + "." + g.cfg.Suffix + ".go"
}

func (g *Generator) parseDir(fset *token.FileSet, dir string) (map[string]*ast.Package, error) {
	return parser.ParseDir(fset, dir, func(fi fs.FileInfo) bool { return !g.isGeneratedFile(fi.Name()) }, parser.ParseComments)
}

func (g *Generator) workers(numFiles int) int {
	numJobs := g.cfg.Workers
	if numJobs <= 0 {
		numJobs = runtime.NumCPU() + 2
	}
	return umath.Min(numJobs, numFiles)
}

func (g *Generator) run(dir string, m mode) error {
	fset := token.NewFileSet()
	pkgs, err := g.parseDir(fset, dir)
	if err != nil {
		return &ErrParse{err}
	}
	if len(pkgs) == 0 {
		return ErrNoPackage(dir)
	}
	var jobs []fileProcessingJob
	for _, pkg := range pkgs {
		for filename, file := range pkg.Files {
			jobs = append(jobs, fileProcessingJob{fset, file, filename, m})
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].filename < jobs[j].filename })
	g.logger.Debug("scanning package directory", zap.String("dir", dir), zap.Int("files", len(jobs)))
	return g.processFiles(jobs)
}

/*
Generates the code for all given files.
An aggregate error, implementing [gitlab.com/kyle_anderson/go-utils/pkg/uerrors.Aggregate]
may be returned if multiple errors were encountered.
*/
func (g *Generator) processFiles(fileJobs []fileProcessingJob) error {
	numJobs := g.workers(len(fileJobs))
	wg := &sync.WaitGroup{}
	wg.Add(numJobs)
	jobs := make(chan fileProcessingJob, numJobs)
	errs := make(chan *ErrFileProcessing, cap(jobs)) // No need to close, wouldn't signal anything
	for i := 0; i < numJobs; i++ {
		go func() {
			g.processor(jobs, errs)
			wg.Done()
		}()
	}
	collectedErrs := uerrors.CollectChan(errs)
	for _, job := range fileJobs {
		jobs <- job
	}
	close(jobs)
	wg.Wait()
	/* errs can safely be closed here as all writers should now have terminated. */
	close(errs)
	return (<-collectedErrs).Materialize()
}
