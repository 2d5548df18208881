package extract

const productPage = `<html><body>
<div class="cmp-container">
  <h1 class="cmp-product-details-main__heading-title">Біг Мак®</h1>
  <div class="cmp-text"><p>Два біфштекси з яловичини, соус, салат.</p></div>
  <button class="cmp-accordion__button">Харчова цінність</button>
</div>
</body></html>`

const nutritionPanel = `<html><body>
<div class="cmp-container">
  <ul>
    <li class="cmp-nutrition-summary__heading-primary-item">
      <span class="value">550<span class="percent"><br>(27%)</span></span>
      <span class="metric">Калорійність<br>(ккал)</span>
    </li>
    <li class="cmp-nutrition-summary__heading-primary-item">
      <span class="value">29,7 г</span>
      <span class="metric">Жири</span>
    </li>
    <li class="cmp-nutrition-summary__heading-primary-item">
      <span class="value">45 г</span>
      <span class="metric">Вуглеводи (г)</span>
    </li>
    <li class="cmp-nutrition-summary__heading-primary-item">
      <span class="value">25 г</span>
      <span class="metric">Білки</span>
    </li>
  </ul>
  <div class="label-item"><span class="metric">НЖК:</span><span class="value">11 г</span></div>
  <div class="label-item"><span class="metric">Цукор:</span><span class="value">9,2 г</span></div>
  <div class="label-item"><span class="metric">Сіль:</span><span class="value">2,2 г</span></div>
  <div class="label-item"><span class="metric">Порція:</span><span class="value">214 г</span></div>
  <div class="label-item"><span class="metric">Клітковина:</span><span class="value">3 г</span></div>
  <div class="label-item"><span class="metric">Сіль:</span><span class="value">н/д</span></div>
  <div class="label-item"><span class="value">7 г</span></div>
  <div class="label-item"><span class="metric">Білки</span></div>
</div>
</body></html>`
