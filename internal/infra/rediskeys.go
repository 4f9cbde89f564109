package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "librarium"
)

// Ключи кэша каталога
const (
	RedisKeyBookList = RedisNamespace + ":books:all"
)

// BookKey Генератор ключа для конкретной книги
func BookKey(id int64) string {
	return fmt.Sprintf("%s:books:%d", RedisNamespace, id)
}
