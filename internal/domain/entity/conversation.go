// Package entity 定义领域实体
package entity

import (
	"time"
)

// Role 对话角色枚举
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn 会话中的一个轮次，追加后不再修改
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn 创建新轮次
func NewTurn(role Role, content string) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
