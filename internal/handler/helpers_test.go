package handler

import "github.com/hitoshi/taskpad/internal/middleware"

// apiErrorResponse は統一エラーフォーマット(middleware.ErrorResponseBody)のテスト用エイリアス。
type apiErrorResponse = middleware.ErrorResponseBody
