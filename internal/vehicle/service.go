// Package vehicle は車両リスティングに関するビジネスロジックを提供する。
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/travelguru/rentgate/internal/cache"
	"github.com/travelguru/rentgate/internal/model"
	"github.com/travelguru/rentgate/internal/rental"
	"github.com/travelguru/rentgate/internal/security"
)

// ResourceVehicles は車両読み取りのキャッシュリソース種別。
// 車両の変更操作が成功するたびに、この種別のキャッシュ全体が無効化される。
const ResourceVehicles = "vehicles"

// Service は車両リスティングに関するビジネスロジックを提供する。
// 読み取りはクエリキャッシュを経由し、変更はレンタルAPIへ転送した上で
// 車両キャッシュを無効化する。
type Service struct {
	api       rental.API
	cache     *cache.QueryCache
	sanitizer security.ContentSanitizerService
	urlGuard  security.URLGuardService
}

// NewService はServiceを生成する。
func NewService(api rental.API, queryCache *cache.QueryCache, sanitizer security.ContentSanitizerService, urlGuard security.URLGuardService) *Service {
	return &Service{
		api:       api,
		cache:     queryCache,
		sanitizer: sanitizer,
		urlGuard:  urlGuard,
	}
}

// List は条件に合致する車両一覧を取得する。
// 同一条件の読み取りはキャッシュを共有し、実行中のフェッチには合流する。
func (s *Service) List(ctx context.Context, query model.VehicleQuery) ([]model.Vehicle, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	val, err := s.cache.Do(ctx, ResourceVehicles, "list?"+query.Params().Encode(), func(ctx context.Context) (interface{}, error) {
		return s.api.ListVehicles(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return val.([]model.Vehicle), nil
}

// Get は指定IDの車両を取得する。見つからない場合はVEHICLE_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Vehicle, error) {
	val, err := s.cache.Do(ctx, ResourceVehicles, "id:"+id, func(ctx context.Context) (interface{}, error) {
		return s.api.GetVehicle(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	vehicle := val.(*model.Vehicle)
	if vehicle == nil {
		return nil, model.NewVehicleNotFoundError(id)
	}
	return vehicle, nil
}

// Latest は新着順の車両一覧を取得する。
func (s *Service) Latest(ctx context.Context, limit int) ([]model.Vehicle, error) {
	val, err := s.cache.Do(ctx, ResourceVehicles, fmt.Sprintf("latest:%d", limit), func(ctx context.Context) (interface{}, error) {
		return s.api.LatestVehicles(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return val.([]model.Vehicle), nil
}

// TopRated は評価上位の車両一覧を取得する。
func (s *Service) TopRated(ctx context.Context) ([]model.Vehicle, error) {
	val, err := s.cache.Do(ctx, ResourceVehicles, "top-rated", func(ctx context.Context) (interface{}, error) {
		return s.api.TopRatedVehicles(ctx)
	})
	if err != nil {
		return nil, err
	}
	return val.([]model.Vehicle), nil
}

// Mine は指定オーナーが登録した車両一覧を取得する。
func (s *Service) Mine(ctx context.Context, ownerEmail string) ([]model.Vehicle, error) {
	val, err := s.cache.Do(ctx, ResourceVehicles, "mine:"+ownerEmail, func(ctx context.Context) (interface{}, error) {
		all, err := s.api.ListVehicles(ctx, model.VehicleQuery{})
		if err != nil {
			return nil, err
		}
		mine := make([]model.Vehicle, 0, len(all))
		for _, v := range all {
			if v.OwnerEmail == ownerEmail {
				mine = append(mine, v)
			}
		}
		return mine, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]model.Vehicle), nil
}

// Create は車両リスティングを登録する。
// 説明文をサニタイズし、カバー画像URLを検証してからレンタルAPIへ転送する。
// 成功時は車両キャッシュを無効化する。
func (s *Service) Create(ctx context.Context, form model.VehicleForm, sess *model.Session) (*model.Vehicle, error) {
	if err := s.validateForm(form); err != nil {
		return nil, err
	}

	vehicle := s.buildVehicle(form, sess.Email)

	created, err := s.api.CreateVehicle(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ResourceVehicles)
	slog.Info("vehicle created",
		slog.String("vehicle_id", created.ID),
		slog.String("owner_email", sess.Email),
	)

	return created, nil
}

// Update は車両リスティングを更新する。
// 所有者チェック（セッションのメールアドレスとOwnerEmailの一致）を行ってから
// 転送する。このチェックはUI上の利便性のためのもので、最終的な認可は
// レンタルAPI側の責務。成功時は車両キャッシュを無効化する。
func (s *Service) Update(ctx context.Context, id string, form model.VehicleForm, sess *model.Session) (*model.Vehicle, error) {
	if err := s.checkOwnership(ctx, id, sess.Email); err != nil {
		return nil, err
	}

	if err := s.validateForm(form); err != nil {
		return nil, err
	}

	vehicle := s.buildVehicle(form, sess.Email)

	updated, err := s.api.UpdateVehicle(ctx, id, vehicle)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ResourceVehicles)
	slog.Info("vehicle updated", slog.String("vehicle_id", id))

	return updated, nil
}

// Delete は車両リスティングを削除する。
// 所有者チェックの後に転送し、成功時は車両キャッシュを無効化する。
func (s *Service) Delete(ctx context.Context, id string, sess *model.Session) error {
	if err := s.checkOwnership(ctx, id, sess.Email); err != nil {
		return err
	}

	if err := s.api.DeleteVehicle(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ResourceVehicles)
	slog.Info("vehicle deleted", slog.String("vehicle_id", id))

	return nil
}

// validateForm はフォーム検証とカバー画像URLの安全性検証を行う。
func (s *Service) validateForm(form model.VehicleForm) error {
	if errs := form.Validate(); len(errs) > 0 {
		return model.NewValidationError(errs[0].Message)
	}

	if form.CoverImage != "" {
		if err := s.urlGuard.ValidateURL(form.CoverImage); err != nil {
			if errors.Is(err, security.ErrBlockedURL) {
				return model.NewSSRFBlockedError()
			}
			return model.NewInvalidURLError(err.Error())
		}
	}

	return nil
}

// buildVehicle はフォーム入力からレンタルAPIへ送る車両ペイロードを構築する。
// OwnerEmailはフォームではなくセッションから取る。
func (s *Service) buildVehicle(form model.VehicleForm, ownerEmail string) *model.Vehicle {
	return &model.Vehicle{
		VehicleName:  form.VehicleName,
		OwnerName:    form.OwnerName,
		OwnerEmail:   ownerEmail,
		Category:     model.Category(form.Category),
		PricePerDay:  form.PricePerDay,
		Location:     form.Location,
		Availability: form.Availability,
		Description:  s.sanitizer.Sanitize(form.Description),
		CoverImage:   form.CoverImage,
	}
}

// checkOwnership は車両の所有者がセッションのユーザーかを確認する。
// キャッシュを経由せず常に最新の車両を参照する。
func (s *Service) checkOwnership(ctx context.Context, id, sessionEmail string) error {
	current, err := s.api.GetVehicle(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return model.NewVehicleNotFoundError(id)
	}
	if current.OwnerEmail != sessionEmail {
		return model.NewNotOwnerError()
	}
	return nil
}
