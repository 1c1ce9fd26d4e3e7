// Package notation is the application service that turns graph documents
// into SMILES or SMARTS text.  It sits between the CLI and the serializer and
// adds request IDs, limits, logging, metrics and an optional result cache.
package notation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/molnotation/internal/config"
	"github.com/turtacn/molnotation/internal/domain/molecule"
	"github.com/turtacn/molnotation/internal/infrastructure/database/redis"
	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molnotation/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molnotation/internal/smiles"
	"github.com/turtacn/molnotation/pkg/errors"
	mtypes "github.com/turtacn/molnotation/pkg/types/molecule"
)

// Output notations.
const (
	NotationSMILES = "smiles"
	NotationSMARTS = "smarts"
)

const cacheName = "redis"

// Service serializes graph documents.
type Service interface {
	Serialize(ctx context.Context, req *SerializeRequest) (*SerializeResponse, error)
}

// Overrides replaces individual configured defaults for one request.  Nil
// fields keep the default.
type Overrides struct {
	IgnoreHydrogens      *bool `json:"ignore_hydrogens,omitempty"`
	CanonizeChiralities  *bool `json:"canonize_chiralities,omitempty"`
	ExtensionBlock       *bool `json:"extension_block,omitempty"`
	IgnoreInvalidHCount  *bool `json:"ignore_invalid_hcount,omitempty"`
	DetachRSites         *bool `json:"detach_rsites,omitempty"`
	SanitizePseudoLabels *bool `json:"sanitize_pseudo_labels,omitempty"`
}

// SerializeRequest is one serialization job.
type SerializeRequest struct {
	// RequestID correlates log entries; a UUID is generated when empty.
	RequestID string

	Document    *mtypes.GraphDocument
	SMARTS      bool
	VertexRanks []int
	Overrides   Overrides

	// NoCache bypasses the result cache for this request.
	NoCache bool
}

// SerializeResponse carries the text and the emission-order maps.
type SerializeResponse struct {
	RequestID  string   `json:"request_id"`
	Name       string   `json:"name,omitempty"`
	Notation   string   `json:"notation"`
	Text       string   `json:"text"`
	AtomOrder  []int    `json:"atom_order"`
	BondOrder  []int    `json:"bond_order"`
	AtomIndex  []int    `json:"atom_index"`
	BondIndex  []int    `json:"bond_index"`
	Directions []string `json:"directions,omitempty"`
	Cached     bool     `json:"cached"`
}

// result is the cached part of a response.
type result struct {
	Text       string   `json:"text"`
	AtomOrder  []int    `json:"atom_order"`
	BondOrder  []int    `json:"bond_order"`
	AtomIndex  []int    `json:"atom_index"`
	BondIndex  []int    `json:"bond_index"`
	Directions []string `json:"directions,omitempty"`
}

type service struct {
	cfg     config.NotationConfig
	saver   *smiles.Saver
	cache   redis.Cache
	metrics *prometheus.NotationMetrics
	logger  logging.Logger
}

// Option configures optional collaborators.
type Option func(*service)

// WithCache enables result caching.
func WithCache(c redis.Cache) Option {
	return func(s *service) { s.cache = c }
}

// WithMetrics enables metric recording.
func WithMetrics(m *prometheus.NotationMetrics) Option {
	return func(s *service) { s.metrics = m }
}

// NewService builds a Service using cfg for defaults and limits.
func NewService(cfg config.NotationConfig, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &service{
		cfg:    cfg,
		saver:  smiles.NewSaver(smiles.WithDefaultOperationLimit(cfg.OperationLimit)),
		logger: logger.Named("notation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func pick(override *bool, def bool) bool {
	if override != nil {
		return *override
	}
	return def
}

func (s *service) options(req *SerializeRequest) smiles.Options {
	o := req.Overrides
	return smiles.Options{
		IgnoreHydrogens:      pick(o.IgnoreHydrogens, s.cfg.IgnoreHydrogens),
		CanonizeChiralities:  pick(o.CanonizeChiralities, s.cfg.CanonizeChiralities),
		SMARTS:               req.SMARTS,
		WriteExtensionBlock:  pick(o.ExtensionBlock, s.cfg.ExtensionBlock),
		IgnoreInvalidHCount:  pick(o.IgnoreInvalidHCount, s.cfg.IgnoreInvalidHCount),
		VertexRanks:          req.VertexRanks,
		DetachRSites:         pick(o.DetachRSites, s.cfg.DetachRSites),
		SanitizePseudoLabels: pick(o.SanitizePseudoLabels, s.cfg.SanitizePseudoLabels),
		OperationLimit:       s.cfg.OperationLimit,
	}
}

func (s *service) Serialize(ctx context.Context, req *SerializeRequest) (*SerializeResponse, error) {
	if req == nil || req.Document == nil {
		return nil, errors.InvalidParam("serialize request has no document")
	}
	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	notation := NotationSMILES
	if req.SMARTS {
		notation = NotationSMARTS
	}
	log := s.logger.With(logging.RequestID(id), logging.Notation(notation))

	defer s.metrics.Track(notation)()
	start := time.Now()

	res, cached, err := s.serialize(ctx, req, log)
	elapsed := time.Since(start)
	if err != nil {
		code := errors.GetCode(err)
		status := prometheus.StatusFailed
		if errors.IsClientError(code) {
			status = prometheus.StatusRejected
		}
		s.metrics.RecordSerialization(notation, status, code.String(), elapsed, 0)
		if status == prometheus.StatusRejected {
			log.Warn("serialization rejected", logging.Code(code), logging.Bool("stereo", errors.IsStereoError(err)), logging.Err(err))
		} else {
			log.Error("serialization failed", logging.Code(code), logging.Err(err))
		}
		return nil, err
	}

	s.metrics.RecordSerialization(notation, prometheus.StatusOK, "", elapsed, len(res.Text))
	log.Debug("serialized",
		logging.Int("atoms", len(req.Document.Atoms)),
		logging.Int("length", len(res.Text)),
		logging.Bool("cached", cached),
		logging.Duration("took", elapsed),
		logging.Any("atom_order", res.AtomOrder),
	)

	return &SerializeResponse{
		RequestID:  id,
		Name:       req.Document.Name,
		Notation:   notation,
		Text:       res.Text,
		AtomOrder:  res.AtomOrder,
		BondOrder:  res.BondOrder,
		AtomIndex:  res.AtomIndex,
		BondIndex:  res.BondIndex,
		Directions: res.Directions,
		Cached:     cached,
	}, nil
}

func (s *service) serialize(ctx context.Context, req *SerializeRequest, log logging.Logger) (*result, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeTimeout, "request cancelled before serialization")
	}
	if s.cfg.MaxAtoms > 0 && len(req.Document.Atoms) > s.cfg.MaxAtoms {
		return nil, false, errors.New(errors.ErrCodeValidation, "graph document exceeds the atom limit").
			WithDetailf("atoms=%d limit=%d", len(req.Document.Atoms), s.cfg.MaxAtoms)
	}
	opts := s.options(req)

	if s.cache == nil || req.NoCache {
		res, err := s.run(req.Document, opts)
		return res, false, err
	}

	key, err := cacheKey(req.Document, opts)
	if err != nil {
		return nil, false, err
	}
	var res result
	hit, err := s.cache.GetOrSet(ctx, key, &res, s.cfg.CacheTTL, func(context.Context) (interface{}, error) {
		return s.run(req.Document, opts)
	})
	if err == nil {
		s.metrics.RecordCacheAccess(cacheName, hit)
		return &res, hit, nil
	}
	if !errors.IsCode(err, errors.ErrCodeCacheError) && !errors.IsCode(err, errors.ErrCodeSerialization) {
		// the loader itself failed
		return nil, false, err
	}

	s.metrics.RecordCacheError(cacheName, "get")
	log.Warn("result cache unavailable, serializing directly", logging.Err(err))
	direct, err := s.run(req.Document, opts)
	return direct, false, err
}

func (s *service) run(doc *mtypes.GraphDocument, opts smiles.Options) (*result, error) {
	g, err := molecule.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	out, err := s.saver.Save(g, opts)
	if err != nil {
		return nil, err
	}
	res := &result{
		Text:      out.Text,
		AtomOrder: out.AtomOrder,
		BondOrder: out.BondOrder,
		AtomIndex: out.AtomIndex,
		BondIndex: out.BondIndex,
	}
	for _, d := range out.Directions {
		if d != smiles.DirNone {
			res.Directions = directionNames(out.Directions)
			break
		}
	}
	return res, nil
}

// directionNames renders per-bond directions as "/", "\" or "".
func directionNames(dirs []smiles.Direction) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = d.String()
	}
	return out
}

// cacheKey hashes the document together with every option that affects the
// output.
func cacheKey(doc *mtypes.GraphDocument, opts smiles.Options) (string, error) {
	payload := struct {
		Doc  *mtypes.GraphDocument `json:"doc"`
		Opts smiles.Options        `json:"opts"`
	}{doc, opts}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "cannot derive cache key")
	}
	sum := sha256.Sum256(data)
	return "v1:" + hex.EncodeToString(sum[:]), nil
}
