package models

// 全局 ID 中嵌入的实体类型标签
const (
	KindArticle  = "Article"
	KindCategory = "Category"
	KindTag      = "Tag"
	KindComment  = "Comment"
	KindUser     = "User"
)
