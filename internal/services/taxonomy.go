package services

import (
	"context"
	"fmt"
	"strings"

	"newsdesk/internal/models"
	"newsdesk/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxCategoryNameLen = 100
	maxTagNameLen      = 50
)

type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ParentID    ID     `json:"parent_id"`
}

type CategoryPatch struct {
	Name        Field[string] `json:"name"`
	Slug        Field[string] `json:"slug"`
	Description Field[string] `json:"description"`
	Image       Field[string] `json:"image"`
	ParentID    Field[ID]     `json:"parent_id"`
}

// DeleteCategoryInput ReassignTo 非空时文章和子分类先迁移到该分类
type DeleteCategoryInput struct {
	ReassignTo ID `json:"reassign_to"`
}

type TagInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func deriveSlug(explicit, name string) (string, error) {
	src := explicit
	if strings.TrimSpace(src) == "" {
		src = name
	}
	slug := utils.Slugify(src)
	if slug == "" {
		return "", ErrValidation("slug", "cannot be derived from name")
	}
	return slug, nil
}

// GetCategory 按 ID 或 slug 查询，附带直接子分类
func (p *Portal) GetCategory(ctx context.Context, ref string) (*models.Category, error) {
	r, err := parseRef(ref, models.KindCategory)
	if err != nil {
		return nil, err
	}
	category, err := findCategory(p.conn(ctx), r)
	if err != nil {
		return nil, err
	}
	if err := p.conn(ctx).Where("parent_id = ?", category.ID).Order("name ASC").Find(&category.Children).Error; err != nil {
		return nil, ErrInternal(err)
	}
	return category, nil
}

func (p *Portal) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := p.conn(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, ErrInternal(err)
	}
	return categories, nil
}

func (p *Portal) CreateCategory(ctx context.Context, actor *models.User, in CategoryInput) (*models.Category, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	parentID, err := parseOptionalID(in.ParentID.String(), models.KindCategory)
	if err != nil {
		return nil, err
	}
	if err := p.gate.Authorize(actor, ActionCreateCategory, nil); err != nil {
		return nil, err
	}
	name, err := requireText("name", in.Name, maxCategoryNameLen)
	if err != nil {
		return nil, err
	}
	slug, err := deriveSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}

	category := models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		ParentID:    parentID,
	}
	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			if err := ensureCategory(tx, *parentID); err != nil {
				return err
			}
		}
		if err := ensureUnique(tx, &models.Category{}, "name", name, "categories.name", 0); err != nil {
			return err
		}
		if err := ensureSlugFree(tx, &models.Category{}, "categories.slug", slug, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&category).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict("categories.slug")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "Category", slug)
	}
	return &category, nil
}

// UpdateCategory parent_id 为 null 表示改为顶级分类
func (p *Portal) UpdateCategory(ctx context.Context, actor *models.User, ref string, patch CategoryPatch) (*models.Category, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	r, err := parseRef(ref, models.KindCategory)
	if err != nil {
		return nil, err
	}
	var parentID *uint
	if patch.ParentID.Set && !patch.ParentID.Null {
		if parentID, err = parseOptionalID(patch.ParentID.Value.String(), models.KindCategory); err != nil {
			return nil, err
		}
	}
	if err := p.gate.Authorize(actor, ActionUpdateCategory, nil); err != nil {
		return nil, err
	}
	category, err := findCategory(p.conn(ctx), r)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if ok, err := patch.Name.present("name"); err != nil {
		return nil, err
	} else if ok {
		name, err := requireText("name", patch.Name.Value, maxCategoryNameLen)
		if err != nil {
			return nil, err
		}
		if name != category.Name {
			updates["name"] = name
		}
	}
	if ok, err := patch.Slug.present("slug"); err != nil {
		return nil, err
	} else if ok {
		slug := utils.Slugify(patch.Slug.Value)
		if slug == "" {
			return nil, ErrValidation("slug", "required")
		}
		if slug != category.Slug {
			updates["slug"] = slug
		}
	}
	if patch.Description.Set {
		updates["description"] = strings.TrimSpace(patch.Description.Value)
	}
	if patch.Image.Set {
		updates["image"] = strings.TrimSpace(patch.Image.Value)
	}
	if patch.ParentID.Set {
		updates["parent_id"] = parentID
	}

	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			if err := ensureCategory(tx, *parentID); err != nil {
				return err
			}
			if err := checkCycle(tx, category.ID, *parentID); err != nil {
				return err
			}
		}
		if name, ok := updates["name"].(string); ok {
			if err := ensureUnique(tx, &models.Category{}, "name", name, "categories.name", category.ID); err != nil {
				return err
			}
		}
		if slug, ok := updates["slug"].(string); ok {
			if err := ensureSlugFree(tx, &models.Category{}, "categories.slug", slug, category.ID); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(category).Omit(clause.Associations).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict("categories.slug")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "Category", r.String())
	}
	return p.GetCategory(ctx, utils.StringFromUint(category.ID))
}

// DeleteCategory 分类下仍有文章或子分类时拒绝，除非指定迁移目标
func (p *Portal) DeleteCategory(ctx context.Context, actor *models.User, ref string, in DeleteCategoryInput) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	r, err := parseRef(ref, models.KindCategory)
	if err != nil {
		return err
	}
	targetID, err := parseOptionalID(in.ReassignTo.String(), models.KindCategory)
	if err != nil {
		return err
	}
	if err := p.gate.Authorize(actor, ActionDeleteCategory, nil); err != nil {
		return err
	}
	category, err := findCategory(p.conn(ctx), r)
	if err != nil {
		return err
	}

	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var articles, children int64
		if err := tx.Model(&models.Article{}).Where("category_id = ?", category.ID).Count(&articles).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", category.ID).Count(&children).Error; err != nil {
			return err
		}
		if articles+children > 0 {
			if targetID == nil {
				return &Error{
					Kind:       KindConflict,
					Message:    fmt.Sprintf("category still has %d articles and %d subcategories", articles, children),
					Constraint: "category_in_use",
				}
			}
			if err := ensureCategory(tx, *targetID); err != nil {
				return err
			}
			// 目标不能是自身或其子孙
			if *targetID == category.ID {
				return ErrValidation("reassign_to", "cannot be the category being deleted")
			}
			if err := checkCycle(tx, category.ID, *targetID); err != nil {
				if KindOf(err) == KindValidation {
					return ErrValidation("reassign_to", "cannot be a subcategory of the category being deleted")
				}
				return err
			}
			if err := tx.Model(&models.Article{}).Where("category_id = ?", category.ID).
				Update("category_id", *targetID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Category{}).Where("parent_id = ?", category.ID).
				Update("parent_id", *targetID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(category).Error
	})
	return storageError(err, "Category", r.String())
}

// checkCycle 从 parentID 沿父链向上，遇到 id 即成环
func checkCycle(tx *gorm.DB, id, parentID uint) error {
	seen := map[uint]bool{}
	cur := &parentID
	for cur != nil {
		if *cur == id {
			return ErrValidation("parent_id", "would create a cycle")
		}
		if seen[*cur] {
			return nil
		}
		seen[*cur] = true
		var c models.Category
		if err := tx.Select("id", "parent_id").First(&c, *cur).Error; err != nil {
			return err
		}
		cur = c.ParentID
	}
	return nil
}

func findCategory(db *gorm.DB, r Ref) (*models.Category, error) {
	var category models.Category
	var err error
	if r.ID != 0 {
		err = db.First(&category, r.ID).Error
	} else {
		err = db.Where("slug = ?", r.Slug).First(&category).Error
	}
	if err != nil {
		return nil, storageError(err, "Category", r.String())
	}
	return &category, nil
}

// CreateTag 记者和编辑可以创建标签
func (p *Portal) CreateTag(ctx context.Context, actor *models.User, in TagInput) (*models.Tag, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := p.gate.Authorize(actor, ActionCreateTag, nil); err != nil {
		return nil, err
	}
	name, err := requireText("name", in.Name, maxTagNameLen)
	if err != nil {
		return nil, err
	}
	slug, err := deriveSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}

	tag := models.Tag{Name: name, Slug: slug}
	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.Tag{}, "name", name, "tags.name", 0); err != nil {
			return err
		}
		if err := ensureSlugFree(tx, &models.Tag{}, "tags.slug", slug, 0); err != nil {
			return err
		}
		if err := tx.Create(&tag).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict("tags.slug")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "Tag", slug)
	}
	return &tag, nil
}

func (p *Portal) GetTag(ctx context.Context, ref string) (*models.Tag, error) {
	r, err := parseRef(ref, models.KindTag)
	if err != nil {
		return nil, err
	}
	var tag models.Tag
	q := p.conn(ctx)
	if r.ID != 0 {
		err = q.First(&tag, r.ID).Error
	} else {
		err = q.Where("slug = ?", r.Slug).First(&tag).Error
	}
	if err != nil {
		return nil, storageError(err, "Tag", r.String())
	}
	return &tag, nil
}

func (p *Portal) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := p.conn(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, ErrInternal(err)
	}
	return tags, nil
}
