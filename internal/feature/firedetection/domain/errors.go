// Package domain はfiredetectionフィーチャーのドメインエラーを定義します。
package domain

import "errors"

// 上位レイヤーはerrors.Isでこれらを判別し、適切なHTTPステータスに変換します。
var (
	// ErrInvalidArgument は呼び出し元の引数が不正な場合に返されます（チャネル数不一致、範囲外のしきい値など）。
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidImage は画像がnil、または面積がゼロの場合に返されます。
	ErrInvalidImage = errors.New("invalid image")

	// ErrEmptyImage はアップロードされた画像データが空の場合に返されます。
	ErrEmptyImage = errors.New("image data is empty")

	// ErrImageTooLarge は画像データが上限サイズを超えた場合に返されます。
	ErrImageTooLarge = errors.New("image size exceeds maximum")

	// ErrUnsupportedFormat は画像をデコードできなかった場合に返されます。
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrInvalidMode は未知の検出モードが指定された場合に返されます。
	ErrInvalidMode = errors.New("invalid detection mode")

	// ErrEventNotFound は火災イベントが見つからない場合に返されます。
	ErrEventNotFound = errors.New("fire event not found")

	// ErrDetectorUnavailable は外部の検出器・APIが失敗した場合に返されます。
	ErrDetectorUnavailable = errors.New("detector unavailable")

	// ErrEventExists は同じIDの火災イベントが既に存在する場合に返されます。
	ErrEventExists = errors.New("fire event already exists")
)
