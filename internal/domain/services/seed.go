package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
	"github.com/opengovtools/authgraph/internal/infrastructure/seedfile"
)

// ConflictPolicy defines how to handle entities that already exist on import.
type ConflictPolicy string

const (
	// ConflictSkip leaves existing entities untouched. The default; makes
	// re-importing the same document a no-op.
	ConflictSkip ConflictPolicy = "skip"
	// ConflictUpsert updates label and re-applies properties of existing
	// entities.
	ConflictUpsert ConflictPolicy = "upsert"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool           // Validate and resolve without writing
	OnConflict ConflictPolicy // How to handle existing entities
}

// ImportResult summarizes one import run.
type ImportResult struct {
	RunID            string
	EntitiesCreated  int
	EntitiesUpdated  int
	EntitiesSkipped  int
	RelationsCreated int
	RelationsSkipped int
}

// resolvedRelation is a relation seed with every reference resolved to an id.
type resolvedRelation struct {
	seed     *seedfile.RelationSeed
	typeName string
	sourceID int64
	targetID int64
}

// SeedService bulk-loads a seed document into the graph in two passes:
// pass 1 creates entities and builds a name → id map, pass 2 resolves every
// relation reference through that map and creates the edges. Forward
// references — a relation naming an entity defined later in the document —
// resolve naturally because no relation is touched until all entities exist.
//
// An unresolved reference aborts the import before any relation row is
// written: a partial edge set leaves dangling semantic expectations (a
// permission no role grants), which is worse than no edges at all.
type SeedService struct {
	store ports.GraphStore
	log   logrus.FieldLogger
}

// NewSeedService creates a new SeedService.
func NewSeedService(store ports.GraphStore, log logrus.FieldLogger) *SeedService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SeedService{store: store, log: log}
}

// Bootstrap seeds the built-in relation types the resolvers depend on.
// Idempotent; returns how many were created.
func (s *SeedService) Bootstrap(ctx context.Context) (int, error) {
	created := 0
	for _, def := range entities.DefaultRelationTypes {
		existing, err := s.store.FindEntityByTypeAndName(ctx, entities.TypeRelationType, def.Name)
		if err != nil {
			return created, fmt.Errorf("checking relation type %s: %w", def.Name, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.store.CreateEntity(ctx, entities.TypeRelationType, def.Name, def.Label, 0); err != nil {
			return created, fmt.Errorf("creating relation type %s: %w", def.Name, err)
		}
		created++
	}
	if created > 0 {
		s.log.WithField("created", created).Info("bootstrapped relation types")
	}
	return created, nil
}

// Import loads a seed document. See the service doc for the two-pass
// algorithm and abort semantics.
func (s *SeedService) Import(ctx context.Context, doc *seedfile.Document, opts ImportOptions) (*ImportResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed document: %w", err)
	}
	if opts.OnConflict == "" {
		opts.OnConflict = ConflictSkip
	}

	result := &ImportResult{RunID: uuid.New().String()}
	log := s.log.WithField("run_id", result.RunID)

	refs, err := s.importEntities(ctx, doc, opts, result)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolveRelations(ctx, doc, refs)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		if err := s.importRelations(ctx, resolved, opts, result); err != nil {
			return nil, err
		}
		if err := s.store.LogAction(ctx, "seed.import", 0, map[string]any{
			"run_id":            result.RunID,
			"entities_created":  result.EntitiesCreated,
			"relations_created": result.RelationsCreated,
		}); err != nil {
			return nil, fmt.Errorf("logging import: %w", err)
		}
	} else {
		result.RelationsCreated = len(resolved)
	}

	log.WithFields(logrus.Fields{
		"entities_created":  result.EntitiesCreated,
		"entities_skipped":  result.EntitiesSkipped,
		"relations_created": result.RelationsCreated,
		"dry_run":           opts.DryRun,
	}).Info("seed import complete")
	return result, nil
}

// importEntities runs pass 1: create or skip/upsert each entity and build
// the reference map. Pre-existing entities enter the map too, so relations
// may reference entities seeded by earlier runs.
func (s *SeedService) importEntities(ctx context.Context, doc *seedfile.Document, opts ImportOptions, result *ImportResult) (map[string]int64, error) {
	refs := make(map[string]int64, len(doc.Entities))

	for i := range doc.Entities {
		seed := &doc.Entities[i]
		existing, err := s.store.FindEntityByTypeAndName(ctx, seed.EntityType, seed.Name)
		if err != nil {
			return nil, fmt.Errorf("looking up %s: %w", seed.Ref(), err)
		}

		switch {
		case existing == nil:
			if opts.DryRun {
				result.EntitiesCreated++
				// Dry run: no id exists yet; a placeholder keeps reference
				// resolution working.
				refs[seed.Ref()] = -1
				continue
			}
			id, err := s.store.CreateEntity(ctx, seed.EntityType, seed.Name, seed.Label, seed.SortOrder)
			if err != nil {
				return nil, fmt.Errorf("creating %s: %w", seed.Ref(), err)
			}
			if len(seed.Properties) > 0 {
				if err := s.store.SetEntityProperties(ctx, id, seed.Properties); err != nil {
					return nil, fmt.Errorf("setting properties of %s: %w", seed.Ref(), err)
				}
			}
			refs[seed.Ref()] = id
			result.EntitiesCreated++

		case opts.OnConflict == ConflictUpsert:
			if !opts.DryRun {
				if err := s.store.UpdateEntity(ctx, existing.ID, seed.Name, seed.Label, seed.SortOrder); err != nil {
					return nil, fmt.Errorf("updating %s: %w", seed.Ref(), err)
				}
				if len(seed.Properties) > 0 {
					if err := s.store.SetEntityProperties(ctx, existing.ID, seed.Properties); err != nil {
						return nil, fmt.Errorf("setting properties of %s: %w", seed.Ref(), err)
					}
				}
			}
			refs[seed.Ref()] = existing.ID
			result.EntitiesUpdated++

		default: // ConflictSkip
			refs[seed.Ref()] = existing.ID
			result.EntitiesSkipped++
		}
	}
	return refs, nil
}

// resolveRelations resolves every relation's type and endpoints before any
// edge is created. Any unresolved reference is fatal for the whole import.
func (s *SeedService) resolveRelations(ctx context.Context, doc *seedfile.Document, refs map[string]int64) ([]resolvedRelation, error) {
	resolved := make([]resolvedRelation, 0, len(doc.Relations))
	for i := range doc.Relations {
		seed := &doc.Relations[i]

		typeRef := entities.TypeRelationType + ":" + seed.RelationType
		if _, ok := refs[typeRef]; !ok {
			rt, err := s.store.FindEntityByTypeAndName(ctx, entities.TypeRelationType, seed.RelationType)
			if err != nil {
				return nil, fmt.Errorf("looking up relation type %s: %w", seed.RelationType, err)
			}
			if rt == nil {
				return nil, fmt.Errorf("unknown relation type %q in relation %d: %w", seed.RelationType, i+1, ports.ErrNotFound)
			}
			refs[typeRef] = rt.ID
		}

		sourceID, err := s.resolveRef(ctx, refs, seed.Source)
		if err != nil {
			return nil, fmt.Errorf("relation %d: source: %w", i+1, err)
		}
		targetID, err := s.resolveRef(ctx, refs, seed.Target)
		if err != nil {
			return nil, fmt.Errorf("relation %d: target: %w", i+1, err)
		}

		resolved = append(resolved, resolvedRelation{
			seed:     seed,
			typeName: seed.RelationType,
			sourceID: sourceID,
			targetID: targetID,
		})
	}
	return resolved, nil
}

// resolveRef resolves an "entity_type:name" reference through the pass-1 map,
// falling back to the store for entities that predate this import.
func (s *SeedService) resolveRef(ctx context.Context, refs map[string]int64, ref string) (int64, error) {
	if id, ok := refs[ref]; ok {
		return id, nil
	}
	entityType, name, err := seedfile.ParseRef(ref)
	if err != nil {
		return 0, err
	}
	existing, err := s.store.FindEntityByTypeAndName(ctx, entityType, name)
	if err != nil {
		return 0, fmt.Errorf("looking up %s: %w", ref, err)
	}
	if existing == nil {
		return 0, fmt.Errorf("unresolved reference %q: %w", ref, ports.ErrNotFound)
	}
	refs[ref] = existing.ID
	return existing.ID, nil
}

// importRelations runs pass 2 proper: create each resolved edge idempotently
// and attach its properties.
func (s *SeedService) importRelations(ctx context.Context, resolved []resolvedRelation, opts ImportOptions, result *ImportResult) error {
	for i := range resolved {
		r := &resolved[i]
		existing, err := s.store.FindRelation(ctx, r.typeName, r.sourceID, r.targetID)
		if err != nil {
			return fmt.Errorf("checking relation %s → %s: %w", r.seed.Source, r.seed.Target, err)
		}
		if existing != nil {
			result.RelationsSkipped++
			if opts.OnConflict == ConflictUpsert {
				if err := s.setRelationProperties(ctx, existing.ID, r.seed.Properties); err != nil {
					return err
				}
			}
			continue
		}

		relID, err := s.store.CreateRelation(ctx, r.typeName, r.sourceID, r.targetID)
		if err != nil {
			return fmt.Errorf("creating relation %s → %s: %w", r.seed.Source, r.seed.Target, err)
		}
		if err := s.setRelationProperties(ctx, relID, r.seed.Properties); err != nil {
			return err
		}
		result.RelationsCreated++
	}
	return nil
}

func (s *SeedService) setRelationProperties(ctx context.Context, relationID int64, props map[string]string) error {
	for k, v := range props {
		if err := s.store.SetRelationProperty(ctx, relationID, k, v); err != nil {
			return fmt.Errorf("setting relation property %s: %w", k, err)
		}
	}
	return nil
}
