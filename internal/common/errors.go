// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях платформы.
// Эти ошибки позволяют HTTP-слою различать типы проблем
// и возвращать клиенту корректный статус и понятное сообщение.
package common

import "errors"

// Ошибки экономики (баланс, списания)
var (
	// ErrInsufficientBalance — недостаточно монет на счёте
	ErrInsufficientBalance = errors.New("недостаточно монет на счёте")
	// ErrInsufficientShares — недостаточно акций для продажи
	ErrInsufficientShares = errors.New("недостаточно акций")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrUserExists — имя пользователя или telegram_id уже заняты
	ErrUserExists = errors.New("пользователь уже существует")
	// ErrUsernameRequired — не передано имя пользователя
	ErrUsernameRequired = errors.New("не указано имя пользователя")
)

// Ошибки заданий
var (
	// ErrTaskNotFound — задание не найдено
	ErrTaskNotFound = errors.New("задание не найдено")
	// ErrTaskCompleted — награда за задание уже выдана
	ErrTaskCompleted = errors.New("задание уже выполнено")
	// ErrVerificationFailed — проверка выполнения не пройдена
	ErrVerificationFailed = errors.New("проверка выполнения не пройдена")
)

// Ошибки биржи
var (
	// ErrCompanyNotFound — компания не найдена
	ErrCompanyNotFound = errors.New("компания не найдена")
)

// Ошибки маркетплейса
var (
	// ErrGiftNotFound — подарок отсутствует в каталоге
	ErrGiftNotFound = errors.New("подарок не найден")
	// ErrItemNotFound — экземпляр подарка не найден или не выставлен на продажу
	ErrItemNotFound = errors.New("лот не найден")
	// ErrNotOwner — операция доступна только владельцу экземпляра
	ErrNotOwner = errors.New("вы не владелец этого подарка")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWithdrawalProcessed — заявка на вывод уже обработана
	ErrWithdrawalProcessed = errors.New("заявка уже обработана")
	// ErrInvalidStatus — недопустимый статус заявки
	ErrInvalidStatus = errors.New("недопустимый статус заявки")
)

// Ошибки HTTP-слоя
var (
	// ErrUnknownAction — неизвестное значение параметра action
	ErrUnknownAction = errors.New("неизвестное действие")
	// ErrBadRequest — некорректный запрос (отсутствует обязательное поле и т.п.)
	ErrBadRequest = errors.New("некорректный запрос")
)
