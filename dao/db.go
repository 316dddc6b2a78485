package dao

import (
	"finreport-backend/config"
	"finreport-backend/model"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB 全局数据库连接
var DB *gorm.DB

func InitPostgres() error {
	c := config.Cfg.Database
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode,
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return Migrate()
}

// Migrate 建表并创建向量扩展和索引
func Migrate() error {
	// vector类型必须在AutoMigrate之前可用
	if err := DB.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	if err := DB.AutoMigrate(
		&model.User{},
		&model.Document{},
		&model.Chunk{},
		&model.QueryLog{},
		&model.Session{},
		&model.Message{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %v", err)
	}

	// 余弦距离的近似最近邻索引
	if err := DB.Exec(
		"CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)",
	).Error; err != nil {
		return fmt.Errorf("failed to create embedding index: %v", err)
	}

	// 关键词候选查询用的全文索引
	if err := DB.Exec(
		"CREATE INDEX IF NOT EXISTS idx_chunks_text_fts ON chunks USING gin (to_tsvector('english', text))",
	).Error; err != nil {
		return fmt.Errorf("failed to create fulltext index: %v", err)
	}

	return nil
}
