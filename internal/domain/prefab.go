package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UseCase string

const (
	UseCaseWorlds  UseCase = "Worlds"
	UseCaseAvatars UseCase = "Avatars"
	UseCaseOsc     UseCase = "Osc"
)

type Category string

const (
	Category3DModels  Category = "3D Models"
	CategoryAnimation Category = "Animations"
	CategoryMaterials Category = "Materials"
	CategoryAudio     Category = "Audio"
	CategoryVFX       Category = "Visual Effects"
	CategoryParticles Category = "Particles"
	CategoryTooling   Category = "Tooling"
	CategoryLighting  Category = "Lighting"
	CategoryUI        Category = "UI"
	CategoryUdon      Category = "Udon"
	CategoryShaders   Category = "Shaders"
)

type LinkType string

const (
	LinkGumroad LinkType = "Gumroad"
	LinkBooth   LinkType = "Booth"
	LinkJinxy   LinkType = "Jinxy"
	LinkGithub  LinkType = "Github"
	LinkGitlab  LinkType = "Gitlab"
)

type LicenceType string

const (
	LicenceCC0        LicenceType = "CC0"
	LicenceCCBY       LicenceType = "CC-BY"
	LicenceCommercial LicenceType = "Commercial"
	LicenceCustom     LicenceType = "Custom"
)

const (
	MaxDescriptionLen = 400
	MaxContentLen     = 4000
	MaxUseCases       = 2
)

var (
	validUseCases = map[UseCase]bool{
		UseCaseWorlds: true, UseCaseAvatars: true, UseCaseOsc: true,
	}
	validCategories = map[Category]bool{
		Category3DModels: true, CategoryAnimation: true, CategoryMaterials: true,
		CategoryAudio: true, CategoryVFX: true, CategoryParticles: true,
		CategoryTooling: true, CategoryLighting: true, CategoryUI: true,
		CategoryUdon: true, CategoryShaders: true,
	}
	validLinkTypes = map[LinkType]bool{
		LinkGumroad: true, LinkBooth: true, LinkJinxy: true,
		LinkGithub: true, LinkGitlab: true,
	}
	validLicences = map[LicenceType]bool{
		LicenceCC0: true, LicenceCCBY: true, LicenceCommercial: true, LicenceCustom: true,
	}
)

// ValidUseCase reports whether s is one of the closed use-case values.
func ValidUseCase(s string) bool { return validUseCases[UseCase(s)] }

func ValidCategory(s string) bool { return validCategories[Category(s)] }

func ValidLicenceType(s string) bool { return validLicences[LicenceType(s)] }

type ExternalLink struct {
	Type LinkType `json:"type"`
	URL  string   `json:"url"`
}

// Prefab is the canonical asset record. List-valued fields live in jsonb
// columns through gorm's json serializer so a single row stays the unit of
// atomic update.
type Prefab struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"not null;column:name" json:"name"`
	Description   string         `gorm:"not null;column:description" json:"description"`
	Content       string         `gorm:"not null;column:content" json:"content"`
	UseCases      []string       `gorm:"serializer:json;type:jsonb;column:use_cases" json:"use_cases"`
	Categories    []string       `gorm:"serializer:json;type:jsonb;column:categories" json:"categories"`
	Tags          []string       `gorm:"serializer:json;type:jsonb;column:tags" json:"tags"`
	ExternalLinks []ExternalLink `gorm:"serializer:json;type:jsonb;column:external_links" json:"external_links"`
	LicenceType   string         `gorm:"not null;column:licence_type" json:"licence_type"`
	IsFree        bool           `gorm:"not null;column:is_free" json:"is_free"`
	CreatorID     uuid.UUID      `gorm:"type:uuid;not null;index;column:creator_id" json:"creator_id"`
	CreatedAt     time.Time      `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt     *time.Time     `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (Prefab) TableName() string { return "prefab" }

// PrefabDraft is a full create payload.
type PrefabDraft struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Content       string         `json:"content"`
	UseCases      []string       `json:"use_cases"`
	Categories    []string       `json:"categories"`
	Tags          []string       `json:"tags"`
	ExternalLinks []ExternalLink `json:"external_links"`
	LicenceType   string         `json:"licence_type"`
	IsFree        bool           `json:"is_free"`
}

// PrefabPatch carries sparse update semantics: nil means "leave alone",
// a present pointer (even to an empty slice) means "replace".
type PrefabPatch struct {
	Name          *string         `json:"name"`
	Description   *string         `json:"description"`
	Content       *string         `json:"content"`
	UseCases      *[]string       `json:"use_cases"`
	Categories    *[]string       `json:"categories"`
	Tags          *[]string       `json:"tags"`
	ExternalLinks *[]ExternalLink `json:"external_links"`
	LicenceType   *string         `json:"licence_type"`
	IsFree        *bool           `json:"is_free"`
}

func (p *PrefabPatch) IsEmpty() bool {
	return p == nil ||
		(p.Name == nil && p.Description == nil && p.Content == nil &&
			p.UseCases == nil && p.Categories == nil && p.Tags == nil &&
			p.ExternalLinks == nil && p.LicenceType == nil && p.IsFree == nil)
}

type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

func (d *PrefabDraft) Validate() error {
	if d == nil {
		return &FieldError{Field: "payload", Reason: "missing"}
	}
	if d.Name == "" {
		return &FieldError{Field: "name", Reason: "required"}
	}
	if err := checkDescription(d.Description); err != nil {
		return err
	}
	if err := checkContent(d.Content); err != nil {
		return err
	}
	if err := checkUseCases(d.UseCases); err != nil {
		return err
	}
	if err := checkCategories(d.Categories); err != nil {
		return err
	}
	if err := checkTags(d.Tags); err != nil {
		return err
	}
	if err := checkLinks(d.ExternalLinks); err != nil {
		return err
	}
	return checkLicence(d.LicenceType)
}

func (p *PrefabPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return &FieldError{Field: "name", Reason: "cannot be empty"}
	}
	if p.Description != nil {
		if err := checkDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Content != nil {
		if err := checkContent(*p.Content); err != nil {
			return err
		}
	}
	if p.UseCases != nil {
		if err := checkUseCases(*p.UseCases); err != nil {
			return err
		}
	}
	if p.Categories != nil {
		if err := checkCategories(*p.Categories); err != nil {
			return err
		}
	}
	if p.Tags != nil {
		if err := checkTags(*p.Tags); err != nil {
			return err
		}
	}
	if p.ExternalLinks != nil {
		if err := checkLinks(*p.ExternalLinks); err != nil {
			return err
		}
	}
	if p.LicenceType != nil {
		return checkLicence(*p.LicenceType)
	}
	return nil
}

func checkDescription(s string) error {
	if len(s) > MaxDescriptionLen {
		return &FieldError{Field: "description", Reason: "too long"}
	}
	return nil
}

func checkContent(s string) error {
	if len(s) > MaxContentLen {
		return &FieldError{Field: "content", Reason: "too long"}
	}
	return nil
}

func checkUseCases(ucs []string) error {
	if len(ucs) > MaxUseCases {
		return &FieldError{Field: "use_cases", Reason: "at most 2 allowed"}
	}
	for _, uc := range ucs {
		if !validUseCases[UseCase(uc)] {
			return &FieldError{Field: "use_cases", Reason: "unknown use case " + uc}
		}
	}
	return nil
}

func checkCategories(cats []string) error {
	for _, c := range cats {
		if !validCategories[Category(c)] {
			return &FieldError{Field: "categories", Reason: "unknown category " + c}
		}
	}
	return nil
}

// Commas are the search index's tag separator; a tag carrying one would
// silently split into two facet values.
func checkTags(tags []string) error {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return &FieldError{Field: "tags", Reason: "blank tag"}
		}
		if strings.Contains(tag, ",") {
			return &FieldError{Field: "tags", Reason: "tag must not contain a comma"}
		}
	}
	return nil
}

func checkLinks(links []ExternalLink) error {
	for _, l := range links {
		if !validLinkTypes[l.Type] {
			return &FieldError{Field: "external_links", Reason: "unknown link type " + string(l.Type)}
		}
		u, err := url.Parse(l.URL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return &FieldError{Field: "external_links", Reason: "url must be absolute"}
		}
	}
	return nil
}

func checkLicence(s string) error {
	if !validLicences[LicenceType(s)] {
		return &FieldError{Field: "licence_type", Reason: "unknown licence " + s}
	}
	return nil
}
