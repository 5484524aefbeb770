package postgres

import (
	"aviators/pkg/domain"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

type PgPost struct {
	ID   uuid.UUID `db:"id"   goqu:"skipinsert"`
	Slug string    `db:"slug"`

	Title   string          `db:"title"`
	Excerpt string          `db:"excerpt"`
	Content string          `db:"content"`
	Author  json.RawMessage `db:"author"`

	Category string          `db:"category"`
	Tags     json.RawMessage `db:"tags"`

	FeaturedImage string `db:"featured_image"`
	AltText       string `db:"alt_text"`
	Featured      bool   `db:"featured"`

	SEO            json.RawMessage `db:"seo"`
	StructuredData json.RawMessage `db:"structured_data"`
	Validation     json.RawMessage `db:"validation"`

	ReadingTime    int    `db:"reading_time"`
	WordCount      int    `db:"word_count"`
	WorkflowStatus string `db:"workflow_status"`

	Version   int           `db:"version"    goqu:"skipinsert"`
	CreatedBy uuid.NullUUID `db:"created_by"`

	PublishedAt sql.NullTime `db:"published_at"`
	CreatedAt   time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt   sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt   sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func marshalAll(out []*json.RawMessage, in ...any) error {
	for i, v := range in {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("could not marshal column: %w", err)
		}
		*out[i] = b
	}

	return nil
}

func unmarshalAll(in []json.RawMessage, out ...any) error {
	for i, v := range out {
		if len(in[i]) == 0 {
			continue
		}
		if err := json.Unmarshal(in[i], v); err != nil {
			return fmt.Errorf("could not unmarshal column: %w", err)
		}
	}

	return nil
}

func (p *PgPost) ToDomain() (*domain.Post, error) {
	post := &domain.Post{
		ID:             domain.PostID(p.ID),
		Slug:           p.Slug,
		Title:          p.Title,
		Excerpt:        p.Excerpt,
		Content:        p.Content,
		Category:       p.Category,
		FeaturedImage:  p.FeaturedImage,
		AltText:        p.AltText,
		Featured:       p.Featured,
		ReadingTime:    p.ReadingTime,
		WordCount:      p.WordCount,
		WorkflowStatus: domain.WorkflowStatus(p.WorkflowStatus),
		Version:        p.Version,
		CreatedBy:      domain.UserID(p.CreatedBy.UUID),
		PublishedAt:    p.PublishedAt.Time,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt.Time,
		DeletedAt:      p.DeletedAt.Time,
	}
	err := unmarshalAll(
		[]json.RawMessage{p.Author, p.Tags, p.SEO, p.StructuredData, p.Validation},
		&post.Author, &post.Tags, &post.SEO, &post.StructuredData, &post.Validation,
	)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", p.ID, err)
	}

	return post, nil
}

func (p *PgPost) FromDomain(post domain.Post) error {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	*p = PgPost{
		ID:             uuid.UUID(post.ID),
		Slug:           post.Slug,
		Title:          post.Title,
		Excerpt:        post.Excerpt,
		Content:        post.Content,
		Category:       post.Category,
		FeaturedImage:  post.FeaturedImage,
		AltText:        post.AltText,
		Featured:       post.Featured,
		ReadingTime:    post.ReadingTime,
		WordCount:      post.WordCount,
		WorkflowStatus: string(post.WorkflowStatus),
		Version:        post.Version,
		CreatedBy: uuid.NullUUID{
			UUID:  uuid.UUID(post.CreatedBy),
			Valid: post.CreatedBy != domain.UserID(uuid.Nil),
		},
		PublishedAt: nullTime(post.PublishedAt),
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   nullTime(post.UpdatedAt),
		DeletedAt:   nullTime(post.DeletedAt),
	}

	return marshalAll(
		[]*json.RawMessage{&p.Author, &p.Tags, &p.SEO, &p.StructuredData, &p.Validation},
		post.Author, tags, post.SEO, post.StructuredData, post.Validation,
	)
}

// updateRecord lists the columns an update may change.
func (p *PgPost) updateRecord() goqu.Record {
	return goqu.Record{
		"slug":            p.Slug,
		"title":           p.Title,
		"excerpt":         p.Excerpt,
		"content":         p.Content,
		"author":          p.Author,
		"category":        p.Category,
		"tags":            p.Tags,
		"featured_image":  p.FeaturedImage,
		"alt_text":        p.AltText,
		"featured":        p.Featured,
		"seo":             p.SEO,
		"structured_data": p.StructuredData,
		"validation":      p.Validation,
		"reading_time":    p.ReadingTime,
		"word_count":      p.WordCount,
		"workflow_status": p.WorkflowStatus,
		"published_at":    p.PublishedAt,
		"version":         goqu.L("version + 1"),
		"updated_at":      goqu.L("CURRENT_TIMESTAMP"),
	}
}

func pgPostsToDomain(posts []PgPost) ([]domain.Post, error) {
	out := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		d, err := post.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}

type PgLead struct {
	ID    uuid.UUID `db:"id"    goqu:"skipinsert"`
	Email string    `db:"email"`

	Name           string `db:"name"`
	Phone          string `db:"phone"`
	City           string `db:"city"`
	Age            int    `db:"age"`
	Education      string `db:"education"`
	CourseInterest string `db:"course_interest"`
	Source         string `db:"source"`

	Activity   json.RawMessage `db:"activity"`
	Score      json.RawMessage `db:"score"`
	Grade      string          `db:"grade"`
	TotalScore float64         `db:"total_score"`
	Route      json.RawMessage `db:"route"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgLead) ToDomain() (*domain.Lead, error) {
	lead := &domain.Lead{
		ID:             domain.LeadID(p.ID),
		Email:          p.Email,
		Name:           p.Name,
		Phone:          p.Phone,
		City:           p.City,
		Age:            p.Age,
		Education:      p.Education,
		CourseInterest: p.CourseInterest,
		Source:         p.Source,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt.Time,
	}
	err := unmarshalAll(
		[]json.RawMessage{p.Activity, p.Score, p.Route},
		&lead.Activity, &lead.Score, &lead.Route,
	)
	if err != nil {
		return nil, fmt.Errorf("lead %s: %w", p.ID, err)
	}

	return lead, nil
}

func (p *PgLead) FromDomain(lead domain.Lead) error {
	grade := lead.Score.Grade
	if grade == "" {
		grade = domain.LeadGradeCold
	}

	*p = PgLead{
		ID:             uuid.UUID(lead.ID),
		Email:          lead.Email,
		Name:           lead.Name,
		Phone:          lead.Phone,
		City:           lead.City,
		Age:            lead.Age,
		Education:      lead.Education,
		CourseInterest: lead.CourseInterest,
		Source:         lead.Source,
		Grade:          string(grade),
		TotalScore:     lead.Score.Total,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      nullTime(lead.UpdatedAt),
	}

	return marshalAll(
		[]*json.RawMessage{&p.Activity, &p.Score, &p.Route},
		lead.Activity, lead.Score, lead.Route,
	)
}

func (p *PgLead) updateRecord() goqu.Record {
	return goqu.Record{
		"name":            p.Name,
		"phone":           p.Phone,
		"city":            p.City,
		"age":             p.Age,
		"education":       p.Education,
		"course_interest": p.CourseInterest,
		"source":          p.Source,
		"activity":        p.Activity,
		"score":           p.Score,
		"grade":           p.Grade,
		"total_score":     p.TotalScore,
		"route":           p.Route,
		"updated_at":      goqu.L("CURRENT_TIMESTAMP"),
	}
}

func pgLeadsToDomain(leads []PgLead) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		d, err := lead.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}
