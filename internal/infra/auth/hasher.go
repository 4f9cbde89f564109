package auth

import "golang.org/x/crypto/bcrypt"

// Hasher — одностороннее хеширование паролей (bcrypt).
// Соль и стоимость вшиты в сам хеш, сторонних данных для проверки не нужно.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify сравнивает пароль с хешем. Закрывается на любой ошибке:
// битый формат хеша и несовпадение пароля снаружи неразличимы — false.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
