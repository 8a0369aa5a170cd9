package services

import (
	"newsdesk/internal/models"
)

type Action string

const (
	ActionReadPublished   Action = "read_published"
	ActionCreateArticle   Action = "create_article"
	ActionUpdateArticle   Action = "update_article"
	ActionDeleteArticle   Action = "delete_article"
	ActionViewDraft       Action = "view_draft"
	ActionCreateTag       Action = "create_tag"
	ActionDeleteComment   Action = "delete_comment"
	ActionCreateCategory  Action = "create_category"
	ActionUpdateCategory  Action = "update_category"
	ActionDeleteCategory  Action = "delete_category"
	ActionLikeArticle     Action = "like_article"
	ActionBookmarkArticle Action = "bookmark_article"
	ActionAddComment      Action = "add_comment"
	ActionUpdateProfile   Action = "update_profile"
	ActionManageUser      Action = "manage_user"
	ActionAssignRole      Action = "assign_role"
)

const reasonAuthRequired = "authentication required"

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Gate 集中式权限判定，无状态
type Gate struct{}

// Decide 按优先级依次匹配规则；ownerID 为资源所有者，没有时传 nil
func (Gate) Decide(actor *models.User, action Action, ownerID *uint) Decision {
	if actor == nil {
		if action == ActionReadPublished {
			return allow()
		}
		return deny(reasonAuthRequired)
	}

	switch action {
	case ActionReadPublished:
		return allow()

	case ActionCreateArticle, ActionCreateTag:
		if actor.IsJournalist() || actor.IsEditor() {
			return allow()
		}
		return deny("journalist or editor role required")

	case ActionUpdateArticle, ActionDeleteArticle, ActionViewDraft:
		if isOwner(actor, ownerID) || actor.IsEditor() {
			return allow()
		}
		return deny("only the author or an editor can modify this article")

	case ActionDeleteComment:
		if isOwner(actor, ownerID) || actor.IsEditor() {
			return allow()
		}
		return deny("only the author or an editor can delete this comment")

	case ActionCreateCategory, ActionUpdateCategory, ActionDeleteCategory, ActionManageUser, ActionAssignRole:
		if actor.IsEditor() {
			return allow()
		}
		return deny("editor role required")

	case ActionLikeArticle, ActionBookmarkArticle, ActionAddComment, ActionUpdateProfile:
		return allow()
	}

	return deny("no rule for action " + string(action))
}

// Authorize 与 Decide 相同，拒绝时返回 Unauthenticated 或 PermissionDenied
func (g Gate) Authorize(actor *models.User, action Action, ownerID *uint) error {
	d := g.Decide(actor, action, ownerID)
	if d.Allowed {
		return nil
	}
	if actor == nil {
		return ErrUnauthenticated(d.Reason)
	}
	return ErrPermissionDenied(d.Reason)
}

func isOwner(actor *models.User, ownerID *uint) bool {
	return ownerID != nil && *ownerID == actor.ID
}
