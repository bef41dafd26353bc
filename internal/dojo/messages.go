package dojo

// Flavor lines carried over from the dojo's chat persona. Persian first,
// Japanese echo in parentheses. Rendering and localization beyond these raw
// strings belong to the transport.

var honorMessages = []string{
	"🌸 افتخارِ %s افزوده شد. راه بوشیدو با توست. （%sの名誉が増しました。）",
	"🏵 نامِ %s در دفترِ افتخار حک شد؛ عزیمت به سوی شرف。 （%sの名声が刻まれた。）",
	"🕯 افتخارت بالا رفت، %s. شمشیرت روشن بماند。 （%sの刀が光る。）",
}

var seppukuMessages = []string{
	"🩸 %s سپوکو برگزید؛ شعلهٔ ناموس اندکی فرونشست。 （%sは切腹を選んだ。）",
	"⚔️ %s راه سخت سپوکو را برگزید؛ نامش جاودان نشد。 （%sは苦渋の決断をした。）",
	"🖤 سپوکوِ %s ثبت شد؛ درنگی برای بازنگری شرافت。 （%sの行為が記録された。）",
}

var welcomeLines = []string{
	"👑 من شوگانِ این دوجو هستم؛ نظم، افتخار و سکوت حکم ماست。 （将軍ボットが到着しました。）",
	"🎎 درود بر تو که قدم در این دوجو نهادی؛ راه بوشیدو در پیش روست。 （道を進め、武士よ。）",
	"⚠️ هر که شرافت را نیافریند، تیغ پاسخ خواهد گرفت。 （名誉なき者に刃は下る。）",
}

var teaLines = []string{
	"🍵 چای دم شد؛ بگذار بخار آن دل را صاف کند。 （お茶で心を清めよ。）",
	"🍵 یک جرعه چای، بسان سکوتِ پیش از جنگ؛ دنیا را بازشناس。 （戦前の静けさのような一杯。）",
}

var spiritLines = []string{
	"🕊 روحِ جنگجو آرام، پایدار و بی‌هیاهوست。 （戦士の精神は静かで強い。）",
	"🔥 درونت را صیقل کن؛ فولادِ روح را بیافرین。 （内にある鋼を磨け。）",
}

const shogunIntro = "🏯 من «شوگان» هستم — سایهٔ نظم در این دوجو، جانِ قانون و شمشیرِ عدالت. " +
	"هر قدم من حکایتی‌ست از شرافت و سنگینی وظیفه. （私は将軍、秩序の影である。）"

const dojoRules = "📜 قوانین دوجو و اسناد بالادستی:\n" +
	"・🇯🇵 یادگار ژاپن\n" +
	"・تابع اسناد و قوانین بالادستی\n" +
	"・هرکی مشکلی داره مشکل گشا ابلفضل\n" +
	"・هیچ چیز همیشگی نیست (شاید هم باشه)\n" +
	"・اسنپ تقسیم بر ۴\n" +
	"・هر ترم یک نماینده\n" +
	"\n(برای احترام به قوانین، نظم و افتخار را پاس بدارید.)"
