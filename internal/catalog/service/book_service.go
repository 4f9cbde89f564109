package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/librarium/internal/domain"
	"go.uber.org/zap"
)

// BookRepository описывает требования к хранилищу каталога.
type BookRepository interface {
	Insert(ctx context.Context, b *domain.Book) (*domain.Book, error)
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context) ([]*domain.Book, error)
	SetBorrowed(ctx context.Context, id int64, borrowed bool) (*domain.Book, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// BookCacheLayer — read-through кэш каталога. Отказ кэша никогда
// не поднимается до клиента, источник правды всегда Postgres.
type BookCacheLayer interface {
	GetBook(ctx context.Context, id int64) (*domain.Book, bool)
	SetBook(ctx context.Context, book *domain.Book)
	GetList(ctx context.Context) ([]*domain.Book, bool)
	SetList(ctx context.Context, books []*domain.Book)
	Invalidate(ctx context.Context, id int64)
}

type BookService struct {
	repo   BookRepository
	cache  BookCacheLayer
	logger *zap.Logger
}

func NewBookService(repo BookRepository, cache BookCacheLayer, logger *zap.Logger) *BookService {
	return &BookService{
		repo:   repo,
		cache:  cache,
		logger: logger.Named("book-service"),
	}
}

func (s *BookService) Create(ctx context.Context, req domain.BookCreateRequest) (*domain.Book, error) {
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	if title == "" || author == "" {
		return nil, fmt.Errorf("%w: title and author are required", domain.ErrValidation)
	}

	book, err := s.repo.Insert(ctx, &domain.Book{Title: title, Author: author})
	if err != nil {
		s.logger.Error("failed to create book", zap.Error(err))
		return nil, err
	}

	s.cache.Invalidate(ctx, book.ID)
	s.logger.Info("book created", zap.Int64("book_id", book.ID), zap.String("title", book.Title))
	return book, nil
}

func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	if books, ok := s.cache.GetList(ctx); ok {
		return books, nil
	}

	books, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list books", zap.Error(err))
		return nil, fmt.Errorf("service: could not fetch books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}

	s.cache.SetList(ctx, books)
	return books, nil
}

func (s *BookService) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	if book, ok := s.cache.GetBook(ctx, id); ok {
		return book, nil
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch book", zap.Int64("book_id", id), zap.Error(err))
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}

	s.cache.SetBook(ctx, book)
	return book, nil
}

// Borrow помечает книгу выданной. Повторная выдача — конфликт.
func (s *BookService) Borrow(ctx context.Context, id int64) (*domain.Book, error) {
	return s.toggleBorrow(ctx, id, true)
}

// Return возвращает книгу в каталог. Возврат невыданной — конфликт.
func (s *BookService) Return(ctx context.Context, id int64) (*domain.Book, error) {
	return s.toggleBorrow(ctx, id, false)
}

func (s *BookService) toggleBorrow(ctx context.Context, id int64, borrowed bool) (*domain.Book, error) {
	book, err := s.repo.SetBorrowed(ctx, id, borrowed)
	if err != nil {
		s.logger.Error("failed to toggle borrow flag", zap.Int64("book_id", id), zap.Error(err))
		return nil, err
	}
	if book == nil {
		// UPDATE не зацепил строку: либо книги нет, либо флаг уже в нужном состоянии
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: book %d borrow state unchanged", domain.ErrConflict, id)
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info("borrow flag updated", zap.Int64("book_id", id), zap.Bool("borrowed", borrowed))
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete book", zap.Int64("book_id", id), zap.Error(err))
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info("book deleted", zap.Int64("book_id", id))
	return nil
}
