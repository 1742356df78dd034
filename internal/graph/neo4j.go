package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
)

type neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

func NewNeo4jStore(driver neo4j.DriverWithContext, database string, baseLog *logger.Logger) Store {
	return &neo4jStore{
		driver:   driver,
		database: database,
		log:      baseLog.With("gateway", "RelationshipGraph"),
	}
}

// Labels cannot be parameterized in Cypher, so each edge kind has its own
// statement; names are batched per kind through UNWIND.
var edgeQueries = map[EdgeKind]string{
	EdgeUsedFor: `
UNWIND $names AS name
MERGE (p:Prefab {id: $prefab_id})
MERGE (u:UseCase {name: name})
MERGE (p)-[:USED_FOR]->(u)
`,
	EdgeInCategory: `
UNWIND $names AS name
MERGE (p:Prefab {id: $prefab_id})
MERGE (c:Category {name: name})
MERGE (p)-[:IN_CATEGORY]->(c)
`,
	EdgeHasTag: `
UNWIND $names AS name
MERGE (p:Prefab {id: $prefab_id})
MERGE (t:Tag {name: name})
MERGE (p)-[:HAS_TAG]->(t)
`,
}

func (g *neo4jStore) ApplyEdges(ctx context.Context, prefabID string, edges []EdgeSpec) error {
	if prefabID == "" {
		return fmt.Errorf("graph: apply edges: missing prefab id")
	}
	if len(edges) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	byKind := map[EdgeKind][]string{}
	for _, e := range edges {
		if e.Name == "" {
			continue
		}
		byKind[e.Kind] = append(byKind[e.Kind], e.Name)
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for kind, names := range byKind {
			query, ok := edgeQueries[kind]
			if !ok {
				return nil, fmt.Errorf("unknown edge kind %q", kind)
			}
			res, err := tx.Run(ctx, query, map[string]any{
				"prefab_id": prefabID,
				"names":     names,
			})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: apply edges for %s: %w", prefabID, err)
	}
	return nil
}
