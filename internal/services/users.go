package services

import (
	"context"
	"errors"
	"strings"

	"newsdesk/internal/models"
	"newsdesk/internal/utils"

	"gorm.io/gorm"
)

// errUserTaken 插入时触发唯一约束，具体冲突字段稍后查询
var errUserTaken = errors.New("username or email taken")

type SignupInput struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"omitempty,oneof=reader journalist editor"`
	Bio       string `json:"bio"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type LoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ProfilePatch 个人资料字段，null 清空
type ProfilePatch struct {
	FirstName    Field[string] `json:"first_name"`
	LastName     Field[string] `json:"last_name"`
	Bio          Field[string] `json:"bio"`
	ProfileImage Field[string] `json:"profile_image"`
	Website      Field[string] `json:"website"`
	Twitter      Field[string] `json:"twitter"`
	Facebook     Field[string] `json:"facebook"`
	Instagram    Field[string] `json:"instagram"`
}

// UserPatch 编辑管理其他用户时使用，可以修改角色
type UserPatch struct {
	ProfilePatch
	Role Field[string] `json:"role"`
}

// Signup 注册新用户；指定非 reader 角色需要编辑权限
func (p *Portal) Signup(ctx context.Context, actor *models.User, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	role := models.RoleReader
	if in.Role != "" {
		role = models.Role(in.Role)
	}
	if role != models.RoleReader {
		if d := p.gate.Decide(actor, ActionAssignRole, nil); !d.Allowed {
			return nil, ErrPermissionDenied("only editors can assign the " + string(role) + " role")
		}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, ErrInternal(err)
	}
	user := models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		Role:      role,
		Bio:       strings.TrimSpace(in.Bio),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.User{}, "username", user.Username, "users.username", 0); err != nil {
			return err
		}
		if err := ensureUnique(tx, &models.User{}, "email", user.Email, "users.email", 0); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return errUserTaken
			}
			return err
		}
		return nil
	})
	if errors.Is(err, errUserTaken) {
		return nil, p.userConflict(ctx, user.Username, user.Email)
	}
	if err != nil {
		return nil, storageError(err, "User", in.Username)
	}
	return &user, nil
}

// userConflict 并发注册撞上唯一索引后，查出实际冲突的字段
func (p *Portal) userConflict(ctx context.Context, username, email string) error {
	db := p.conn(ctx)
	if err := ensureUnique(db, &models.User{}, "username", username, "users.username", 0); err != nil {
		return storageError(err, "User", username)
	}
	if err := ensureUnique(db, &models.User{}, "email", email, "users.email", 0); err != nil {
		return storageError(err, "User", email)
	}
	return ErrConflict("users.username")
}

// Login 用户名或邮箱登录
func (p *Portal) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, ErrUnauthenticated("invalid credentials")
	}
	var user models.User
	err := p.conn(ctx).Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		if KindOf(storageError(err, "User", login)) == KindNotFound {
			return nil, ErrUnauthenticated("invalid credentials")
		}
		return nil, ErrInternal(err)
	}
	if !utils.CheckPasswordHash(in.Password, user.Password) {
		return nil, ErrUnauthenticated("invalid credentials")
	}
	return &user, nil
}

// UpdateProfile 修改自己的资料
func (p *Portal) UpdateProfile(ctx context.Context, actor *models.User, patch ProfilePatch) (*models.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := p.gate.Authorize(actor, ActionUpdateProfile, &actor.ID); err != nil {
		return nil, err
	}
	updates, err := profileUpdates(patch)
	if err != nil {
		return nil, err
	}
	return p.applyUserUpdates(ctx, actor.ID, updates)
}

// UpdateUser 编辑修改他人资料或角色；修改自己时只能改资料
func (p *Portal) UpdateUser(ctx context.Context, actor *models.User, ref string, patch UserPatch) (*models.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	r, err := parseRef(ref, models.KindUser)
	if err != nil {
		return nil, err
	}
	// 不是自己时先判定权限，再查询目标
	self := r.ID == actor.ID || (r.ID == 0 && r.Slug == actor.Username)
	if !self {
		if err := p.gate.Authorize(actor, ActionManageUser, nil); err != nil {
			return nil, err
		}
	}
	target, err := findUser(p.conn(ctx), r)
	if err != nil {
		return nil, err
	}

	updates, err := profileUpdates(patch.ProfilePatch)
	if err != nil {
		return nil, err
	}
	if ok, err := patch.Role.present("role"); err != nil {
		return nil, err
	} else if ok {
		if err := p.gate.Authorize(actor, ActionAssignRole, &target.ID); err != nil {
			return nil, err
		}
		role := models.Role(patch.Role.Value)
		if !role.Valid() {
			return nil, ErrValidation("role", "must be one of reader journalist editor")
		}
		updates["role"] = string(role)
	}
	return p.applyUserUpdates(ctx, target.ID, updates)
}

// GetUser 按 ID 或用户名查询
func (p *Portal) GetUser(ctx context.Context, ref string) (*models.User, error) {
	r, err := parseRef(ref, models.KindUser)
	if err != nil {
		return nil, err
	}
	return findUser(p.conn(ctx), r)
}

// UserByID 认证中间件使用
func (p *Portal) UserByID(ctx context.Context, id uint) (*models.User, error) {
	return findUser(p.conn(ctx), Ref{ID: id})
}

func profileUpdates(patch ProfilePatch) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	fields := []struct {
		column string
		field  Field[string]
		tag    string
	}{
		{"first_name", patch.FirstName, "max=150"},
		{"last_name", patch.LastName, "max=150"},
		{"bio", patch.Bio, ""},
		{"profile_image", patch.ProfileImage, ""},
		{"website", patch.Website, "omitempty,url"},
		{"twitter", patch.Twitter, "max=15"},
		{"facebook", patch.Facebook, ""},
		{"instagram", patch.Instagram, "max=30"},
	}
	for _, f := range fields {
		if !f.field.Set {
			continue
		}
		value := strings.TrimSpace(f.field.Value)
		if f.tag != "" {
			if err := checkVar(f.column, value, f.tag); err != nil {
				return nil, err
			}
		}
		updates[f.column] = value
	}
	return updates, nil
}

func (p *Portal) applyUserUpdates(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	db := p.conn(ctx)
	if len(updates) > 0 {
		if err := db.Model(&models.User{ID: id}).Updates(updates).Error; err != nil {
			return nil, ErrInternal(err)
		}
	}
	return findUser(db, Ref{ID: id})
}

func findUser(db *gorm.DB, r Ref) (*models.User, error) {
	var user models.User
	var err error
	if r.ID != 0 {
		err = db.First(&user, r.ID).Error
	} else {
		err = db.Where("username = ?", r.Slug).First(&user).Error
	}
	if err != nil {
		return nil, storageError(err, "User", r.String())
	}
	return &user, nil
}
