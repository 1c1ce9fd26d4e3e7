package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/molnotation/internal/application/notation"
	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

// notationFlags are the per-invocation saver switches.  Only flags the user
// actually set override the configured defaults.
type notationFlags struct {
	ignoreHydrogens     bool
	canonizeChiralities bool
	noExtension         bool
	ignoreInvalidHCount bool
	detachRSites        bool
	sanitizeLabels      bool
	ranks               []int
}

// NewSmilesCmd creates the smiles command.
func NewSmilesCmd() *cobra.Command {
	return newNotationCmd(notation.NotationSMILES, false)
}

// NewSmartsCmd creates the smarts command.
func NewSmartsCmd() *cobra.Command {
	return newNotationCmd(notation.NotationSMARTS, true)
}

func newNotationCmd(name string, smarts bool) *cobra.Command {
	f := &notationFlags{}
	upper := strings.ToUpper(name)

	cmd := &cobra.Command{
		Use:   name + " FILE",
		Short: "Write graph documents as " + upper,
		Long: "Read one or more graph documents from FILE (JSON or YAML, '-' for stdin)\n" +
			"and print one " + upper + " string per document.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.InvalidParam(fmt.Sprintf("%s expects exactly one FILE argument", name))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotation(cmd, args[0], smarts, f)
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.ignoreHydrogens, "ignore-hydrogens", false, "fold plain explicit hydrogens into their neighbor's hydrogen count")
	fl.BoolVar(&f.canonizeChiralities, "canonize-chiralities", false, "normalize stereo groups before writing")
	fl.BoolVar(&f.noExtension, "no-extension", false, "do not append the |...| extension block")
	fl.BoolVar(&f.ignoreInvalidHCount, "ignore-invalid-hcount", false, "write atoms with an unknown hydrogen count without an H term")
	fl.BoolVar(&f.detachRSites, "detach-rsites", false, "write R-sites as separate components joined by ring-closure labels")
	fl.BoolVar(&f.sanitizeLabels, "sanitize-labels", false, "replace unsafe characters in pseudo-atom labels")
	fl.IntSliceVar(&f.ranks, "ranks", nil, "vertex ranks guiding the traversal order (one per atom)")
	return cmd
}

// overrides returns the saver overrides for the flags that were set.
func (f *notationFlags) overrides(cmd *cobra.Command) notation.Overrides {
	var o notation.Overrides
	set := func(flag string, value bool) *bool {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		v := value
		return &v
	}
	o.IgnoreHydrogens = set("ignore-hydrogens", f.ignoreHydrogens)
	o.CanonizeChiralities = set("canonize-chiralities", f.canonizeChiralities)
	o.ExtensionBlock = set("no-extension", !f.noExtension)
	o.IgnoreInvalidHCount = set("ignore-invalid-hcount", f.ignoreInvalidHCount)
	o.DetachRSites = set("detach-rsites", f.detachRSites)
	o.SanitizePseudoLabels = set("sanitize-labels", f.sanitizeLabels)
	return o
}

func runNotation(cmd *cobra.Command, path string, smarts bool, f *notationFlags) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	docs, err := readDocuments(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	if len(f.ranks) > 0 && len(docs) > 1 {
		return errors.InvalidParam("--ranks applies to a single document").WithDetailf("documents=%d", len(docs))
	}

	ctx := cmd.Context()
	if cliCtx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cliCtx.Timeout)
		defer cancel()
	}

	cliCtx.Logger.Debug("documents loaded", logging.String("path", path), logging.Int("count", len(docs)))

	responses := make([]*notation.SerializeResponse, 0, len(docs))
	for i, doc := range docs {
		resp, err := cliCtx.Service.Serialize(ctx, &notation.SerializeRequest{
			Document:    doc,
			SMARTS:      smarts,
			VertexRanks: f.ranks,
			Overrides:   f.overrides(cmd),
			NoCache:     cliCtx.NoCache,
		})
		if err != nil {
			if len(docs) == 1 {
				return err
			}
			return errors.Wrap(err, errors.GetCode(err), fmt.Sprintf("document %d", i))
		}
		responses = append(responses, resp)
	}

	if cliCtx.OutputFormat == OutputJSON {
		if len(responses) == 1 {
			return PrintResult(cmd, responses[0])
		}
		return PrintResult(cmd, responses)
	}
	for _, resp := range responses {
		if err := PrintResult(cmd, resp.Text); err != nil {
			return err
		}
	}
	return nil
}

// readDocuments loads every graph document in path.  JSON input may be a
// single object, an array or a stream of objects; YAML input may hold several
// documents separated by "---".
func readDocuments(stdin io.Reader, path string) ([]*mtypes.GraphDocument, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeNotFound, "input file not found").WithDetailf("path=%s", path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "cannot read input").WithDetailf("path=%s", path)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidFormat, "input holds no graph document").
			WithDetailf("path=%s", path)
	}

	var docs []*mtypes.GraphDocument
	if isJSON(path, trimmed) {
		docs, err = decodeJSON(trimmed)
	} else {
		docs, err = decodeYAML(trimmed)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMoleculeParsingFailed, "cannot parse graph document").
			WithDetailf("path=%s", path)
	}
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidFormat, "input holds no graph document").
			WithDetailf("path=%s", path)
	}
	return docs, nil
}

func isJSON(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return true
	case ".yaml", ".yml":
		return false
	}
	return data[0] == '{' || data[0] == '['
}

func decodeJSON(data []byte) ([]*mtypes.GraphDocument, error) {
	if data[0] == '[' {
		var docs []*mtypes.GraphDocument
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	var docs []*mtypes.GraphDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		doc := &mtypes.GraphDocument{}
		if err := dec.Decode(doc); err == io.EOF {
			return docs, nil
		} else if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

func decodeYAML(data []byte) ([]*mtypes.GraphDocument, error) {
	var docs []*mtypes.GraphDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		doc := &mtypes.GraphDocument{}
		if err := dec.Decode(doc); err == io.EOF {
			return docs, nil
		} else if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}
