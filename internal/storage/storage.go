package storage

import (
	"context"
	"fmt"
	"log"

	"resume-nlp-go/internal/config"
)

// Storage 存储管理器，聚合所有存储相关依赖
// 当前只有Redis一个可选组件，保留聚合结构便于后续扩展
type Storage struct {
	// 键值存储
	Redis *Redis
}

// NewStorage 创建存储管理器
// Redis未启用时返回空的管理器而不是错误，缓存属于可选能力
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}

	// 初始化Redis (如果启用了)
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		log.Printf("初始化Redis at %s...", cfg.Redis.Address)
		redis, err := NewRedisAdapter(&cfg.Redis)
		if err != nil {
			// 缓存不可用不阻塞服务启动，所有请求走完整解析路径
			log.Printf("警告: 初始化Redis失败, 结果缓存不可用: %v", err)
		} else {
			storage.Redis = redis
		}
	} else {
		log.Printf("Redis未启用, 跳过初始化.")
	}

	return storage, nil
}

// HasCache 结果缓存是否可用
func (s *Storage) HasCache() bool {
	return s != nil && s.Redis != nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	// 关闭Redis连接
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("关闭Redis连接失败: %v", err)
		}
	}
}
