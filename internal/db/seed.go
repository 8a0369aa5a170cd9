package db

import (
	"fmt"
	"newsdesk/internal/models"
	"newsdesk/internal/utils"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var defaultCategories = []models.Category{
	{Name: "Politics", Description: "Political news and analysis"},
	{Name: "Technology", Description: "Latest tech news and innovations"},
	{Name: "Sports", Description: "Sports news and updates"},
	{Name: "Entertainment", Description: "Entertainment industry news"},
	{Name: "Business", Description: "Business and finance news"},
	{Name: "Health", Description: "Health and wellness news"},
}

var defaultSubcategories = map[string][]string{
	"Technology": {"AI", "Gadgets"},
	"Sports":     {"Football", "Tennis"},
}

var defaultTags = []string{"Breaking", "Analysis", "Interview", "Opinion", "Climate", "Elections"}

// SeedCategories 分类表为空时写入预设分类
func SeedCategories(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debug().Msg("categories already seeded, skipping")
		return nil
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		for _, c := range defaultCategories {
			parent := c
			parent.Slug = utils.Slugify(parent.Name)
			if err := tx.Create(&parent).Error; err != nil {
				return fmt.Errorf("create category %s: %w", parent.Name, err)
			}
			for _, name := range defaultSubcategories[parent.Name] {
				child := models.Category{
					Name:     name,
					Slug:     utils.Slugify(name),
					ParentID: &parent.ID,
				}
				if err := tx.Create(&child).Error; err != nil {
					return fmt.Errorf("create category %s: %w", name, err)
				}
			}
		}
		log.Info().Msg("initial categories created")
		return nil
	})
}

// SeedDemo 写入演示数据：一名编辑、三名记者、五名读者、标签、文章和评论
// 重复执行不会产生重复数据
func SeedDemo(conn *gorm.DB, password string) error {
	if err := SeedCategories(conn); err != nil {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		editor, err := seedUser(tx, "editor", models.RoleEditor, hash)
		if err != nil {
			return err
		}

		var journalists []models.User
		for i := 1; i <= 3; i++ {
			j, err := seedUser(tx, fmt.Sprintf("journalist%d", i), models.RoleJournalist, hash)
			if err != nil {
				return err
			}
			journalists = append(journalists, *j)
		}

		var readers []models.User
		for i := 1; i <= 5; i++ {
			r, err := seedUser(tx, fmt.Sprintf("reader%d", i), models.RoleReader, hash)
			if err != nil {
				return err
			}
			readers = append(readers, *r)
		}

		var tags []models.Tag
		for _, name := range defaultTags {
			tag := models.Tag{Name: name, Slug: utils.Slugify(name)}
			if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			tags = append(tags, tag)
		}

		var categories []models.Category
		if err := tx.Where("parent_id IS NULL").Order("id ASC").Find(&categories).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		for i, category := range categories {
			author := journalists[i%len(journalists)]
			title := fmt.Sprintf("%s roundup: what happened this week", category.Name)
			slug := utils.Slugify(title)

			var existing int64
			tx.Model(&models.Article{}).Where("slug = ?", slug).Count(&existing)
			if existing > 0 {
				continue
			}

			published := now.Add(-time.Duration(i) * time.Hour)
			article := models.Article{
				Title:       title,
				Slug:        slug,
				Summary:     fmt.Sprintf("The most important %s stories, summarised.", category.Name),
				Content:     fmt.Sprintf("## %s\n\nA look back at the week in %s.", category.Name, category.Name),
				AuthorID:    author.ID,
				CategoryID:  category.ID,
				Status:      models.StatusPublished,
				IsFeatured:  i == 0,
				PublishedAt: &published,
				Tags:        []models.Tag{tags[i%len(tags)]},
			}
			if err := tx.Create(&article).Error; err != nil {
				return err
			}

			reader := readers[i%len(readers)]
			comment := models.Comment{ArticleID: article.ID, UserID: reader.ID, Content: "Great summary, thanks!", IsApproved: true}
			if err := tx.Create(&comment).Error; err != nil {
				return err
			}
			reply := models.Comment{ArticleID: article.ID, UserID: editor.ID, ParentID: &comment.ID, Content: "Glad you enjoyed it.", IsApproved: true}
			if err := tx.Create(&reply).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.Like{ArticleID: article.ID, UserID: reader.ID}).Error; err != nil {
				return err
			}
		}

		log.Info().Msg("demo data seeded")
		return nil
	})
}

func seedUser(tx *gorm.DB, username string, role models.Role, hash string) (*models.User, error) {
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Role:     role,
	}
	if err := tx.Where(models.User{Username: username}).FirstOrCreate(&user).Error; err != nil {
		return nil, fmt.Errorf("seed user %s: %w", username, err)
	}
	return &user, nil
}
