package provider

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Querier is the part of a pgx pool or connection the provider needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads edge lists from <interaction>_edges(start_node, end_node),
// category membership from c_list, m_list and p_list, and profiles from
// celebrities, media and politicians(user_name, name, following, followers,
// description[, affiliation]). Only the politicians table carries affiliation.
type Postgres struct {
	db Querier
}

// NewPostgres wraps an existing pool or connection.
func NewPostgres(db Querier) *Postgres {
	return &Postgres{db: db}
}

// ConnectPostgres opens a pool for dsn. The caller closes the returned pool.
func ConnectPostgres(ctx context.Context, dsn string) (*Postgres, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgres(pool), pool, nil
}

func edgesQuery(interaction models.Interaction) string {
	table := pgx.Identifier{string(interaction) + "_edges"}.Sanitize()
	return fmt.Sprintf("SELECT start_node, end_node FROM %s", table)
}

func profilesQuery(name string, withAffiliation bool) string {
	affiliation := "NULL::text"
	if withAffiliation {
		affiliation = "affiliation"
	}
	return fmt.Sprintf(
		"SELECT user_name, name, following, followers, description, %s FROM %s",
		affiliation, pgx.Identifier{name}.Sanitize(),
	)
}

func (p *Postgres) Edges(ctx context.Context, interaction models.Interaction) ([]models.Edge, error) {
	rows, err := p.db.Query(ctx, edgesQuery(interaction))
	if err != nil {
		return nil, fmt.Errorf("query %s edges: %v: %w", interaction, err, models.ErrInputData)
	}
	defer rows.Close()

	var edges []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.StartNode, &e.EndNode); err != nil {
			return nil, fmt.Errorf("scan %s edge: %v: %w", interaction, err, models.ErrInputData)
		}
		edges = append(edges, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate %s edges: %v: %w", interaction, rows.Err(), models.ErrInputData)
	}
	return lowerEdges(edges), nil
}

func (p *Postgres) Tables(ctx context.Context) (labeling.Profiles, error) {
	var profiles labeling.Profiles
	for _, cf := range categoryFiles {
		table, err := p.profiles(ctx, cf.Name, cf.Type == labeling.Politician)
		if err != nil {
			return labeling.Profiles{}, err
		}
		setProfiles(&profiles, cf.Type, table)
	}
	return profiles, nil
}

// Lists reads the membership tables c_list, m_list and p_list, each with a
// single name column.
func (p *Postgres) Lists(ctx context.Context) (labeling.Categories, error) {
	var lists [3][]string
	for i, cf := range categoryFiles {
		names, err := p.names(ctx, string(cf.Type)+"_list")
		if err != nil {
			return labeling.Categories{}, err
		}
		lists[i] = names
	}
	return labeling.NewCategories(lists[0], lists[1], lists[2]), nil
}

func listQuery(table string) string {
	return fmt.Sprintf("SELECT name FROM %s", pgx.Identifier{table}.Sanitize())
}

func (p *Postgres) names(ctx context.Context, table string) ([]string, error) {
	rows, err := p.db.Query(ctx, listQuery(table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %v: %w", table, err, models.ErrInputData)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s: %v: %w", table, err, models.ErrInputData)
		}
		names = append(names, normalizeUser(name))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate %s: %v: %w", table, rows.Err(), models.ErrInputData)
	}
	return names, nil
}

func (p *Postgres) profiles(ctx context.Context, name string, withAffiliation bool) (map[string]labeling.Profile, error) {
	rows, err := p.db.Query(ctx, profilesQuery(name, withAffiliation))
	if err != nil {
		return nil, fmt.Errorf("query %s: %v: %w", name, err, models.ErrInputData)
	}
	defer rows.Close()

	table := make(map[string]labeling.Profile)
	for rows.Next() {
		var (
			user        string
			display     pgtype.Text
			following   pgtype.Int8
			followers   pgtype.Int8
			description pgtype.Text
			affiliation pgtype.Text
		)
		if err := rows.Scan(&user, &display, &following, &followers, &description, &affiliation); err != nil {
			return nil, fmt.Errorf("scan %s: %v: %w", name, err, models.ErrInputData)
		}
		table[normalizeUser(user)] = labeling.Profile{
			Name:        display.String,
			Following:   following.Int64,
			Followers:   followers.Int64,
			Description: description.String,
			Affiliation: affiliation.String,
		}
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate %s: %v: %w", name, rows.Err(), models.ErrInputData)
	}
	return table, nil
}
