package core

import "github.com/rushteam/reco/pkg/utils"

// RecommendContext 承载买家/场景/请求信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Scene  string // 请求场景：home / detail / cart ...

	// User 是目标买家画像；冷启动用户可能为 nil
	User *UserProfile

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：新买家、价格敏感、业态等
	Labels map[string]utils.Label

	// Params 请求级上下文参数（limit、query、realtime_ 前缀实时特征等）
	Params map[string]any
}

// BusinessType 返回目标买家的业态，画像缺失时返回空串。
func (rctx *RecommendContext) BusinessType() string {
	if rctx.User == nil {
		return ""
	}
	return rctx.User.BusinessType
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
