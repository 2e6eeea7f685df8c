package autovoter

// CategoryPolicy controls how long after publication a category's posts
// stay eligible for simulated engagement. MinVotes is stored per
// category but the selector does not consult it.
type CategoryPolicy struct {
	TargetDays int
	MinVotes   int
}

var defaultCategoryPolicy = CategoryPolicy{TargetDays: 180, MinVotes: 0}

// Static per-category policy. Category ids match the production
// categories table; tuning happens here, not in the database.
var categoryPolicies = map[int]CategoryPolicy{
	1:  {TargetDays: 10, MinVotes: 0},     // アニメ・漫画
	2:  {TargetDays: 10, MinVotes: 0},     // エンタメ
	3:  {TargetDays: 180, MinVotes: 0},    // お受験
	4:  {TargetDays: 180, MinVotes: 0},    // クレカ・電子マネー
	5:  {TargetDays: 180, MinVotes: 0},    // ゲーム
	6:  {TargetDays: 3, MinVotes: 0},      // ジャニーズ
	7:  {TargetDays: 3, MinVotes: 0},      // ファッション
	8:  {TargetDays: 1000, MinVotes: 400}, // ペット
	10: {TargetDays: 3, MinVotes: 10},     // 住まい・不動産
	11: {TargetDays: 3, MinVotes: 0},      // 保険
	12: {TargetDays: 180, MinVotes: 0},    // 医療費
	13: {TargetDays: 10, MinVotes: 0},     // 婚活・結婚
	14: {TargetDays: 180, MinVotes: 0},    // 就職・転職
	15: {TargetDays: 180, MinVotes: 10},   // 恋愛
	16: {TargetDays: 180, MinVotes: 10},   // 投資・貯蓄
	17: {TargetDays: 180, MinVotes: 10},   // 整形・脱毛
	18: {TargetDays: 180, MinVotes: 10},   // 料理・グルメ
	19: {TargetDays: 180, MinVotes: 10},   // 旅行・ホテル
	20: {TargetDays: 180, MinVotes: 10},   // 税金・年金
	21: {TargetDays: 180, MinVotes: 10},   // 競馬・ギャンブル
	22: {TargetDays: 180, MinVotes: 0},    // 美容・コスメ
	23: {TargetDays: 180, MinVotes: 0},    // 育児
	24: {TargetDays: 180, MinVotes: 0},    // 雑談
	25: {TargetDays: 10, MinVotes: 0},     // ニュース・話題
}

// PolicyFor returns the policy for a category, defaulting to a 180-day
// window for categories without an explicit entry.
func PolicyFor(categoryID int) CategoryPolicy {
	if p, ok := categoryPolicies[categoryID]; ok {
		return p
	}
	return defaultCategoryPolicy
}
